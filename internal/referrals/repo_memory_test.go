package referrals

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoListNewestFirst(t *testing.T) {
	base := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo := NewMemoryRepoWithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()

	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		if _, err := repo.Create(ctx, Referral{Name: name}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	refs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := []string{refs[0].Name, refs[1].Name, refs[2].Name}
	want := []string{"Carla", "Bruno", "Ana"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestMemoryRepoSameInstantKeepsInsertionOrder(t *testing.T) {
	fixed := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	repo := NewMemoryRepoWithClock(func() time.Time { return fixed })
	ctx := context.Background()

	first, _ := repo.Create(ctx, Referral{Name: "first"})
	second, _ := repo.Create(ctx, Referral{Name: "second"})

	refs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if refs[0].ID != second.ID || refs[1].ID != first.ID {
		t.Fatalf("expected latest insert first, got %q then %q", refs[0].Name, refs[1].Name)
	}
}

func TestMemoryRepoCreateAssignsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	ref, err := repo.Create(context.Background(), Referral{Name: "Ana"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ref.ID == "" {
		t.Fatalf("expected id")
	}
	if ref.Status != DefaultStatus {
		t.Fatalf("expected %q, got %q", DefaultStatus, ref.Status)
	}
	if ref.CreatedAt.IsZero() || ref.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC createdAt, got %v", ref.CreatedAt)
	}
}

func TestMemoryRepoUpdateStatusAndDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	ref, _ := repo.Create(ctx, Referral{Name: "Ana", Phone: "+551199999999"})

	if err := repo.UpdateStatus(ctx, ref.ID, "Em análise"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := repo.GetByID(ctx, ref.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != "Em análise" || got.Phone != "+551199999999" {
		t.Fatalf("unexpected referral after update: %+v", got)
	}

	if err := repo.Delete(ctx, ref.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, ref.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, ref.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, ref.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestMemoryRepoListEmpty(t *testing.T) {
	refs, err := NewMemoryRepo().List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if refs == nil || len(refs) != 0 {
		t.Fatalf("expected empty slice, got %#v", refs)
	}
}
