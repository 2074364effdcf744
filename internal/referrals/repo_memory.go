package referrals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	seq  uint64
	now  func() time.Time
}

type memoryEntry struct {
	ref Referral
	seq uint64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return NewMemoryRepoWithClock(nil)
}

// NewMemoryRepoWithClock constructs a MemoryRepo whose CreatedAt values come from now.
func NewMemoryRepoWithClock(now func() time.Time) *MemoryRepo {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepo{
		data: make(map[string]memoryEntry),
		now:  now,
	}
}

// Create stores a new referral.
func (r *MemoryRepo) Create(ctx context.Context, ref Referral) (Referral, error) {
	if err := ctx.Err(); err != nil {
		return Referral{}, err
	}
	ref.ID = uuid.NewString()
	ref.CreatedAt = r.now().UTC()
	if ref.Status == "" {
		ref.Status = DefaultStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.data[ref.ID] = memoryEntry{ref: ref, seq: r.seq}
	return ref, nil
}

// List returns all referrals, newest first. Referrals created within the same
// clock tick are ordered by insertion, latest first.
func (r *MemoryRepo) List(ctx context.Context) ([]Referral, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.data))
	for _, e := range r.data {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.ref.CreatedAt.Equal(b.ref.CreatedAt) {
			return a.ref.CreatedAt.After(b.ref.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]Referral, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ref)
	}
	return out, nil
}

// GetByID returns a referral by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Referral, error) {
	if err := ctx.Err(); err != nil {
		return Referral{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.data[id]
	if !ok {
		return Referral{}, ErrNotFound
	}
	return e.ref, nil
}

// UpdateStatus replaces the status of a referral.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	e.ref.Status = status
	r.data[id] = e
	return nil
}

// Delete removes a referral.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
