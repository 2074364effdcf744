//go:build integration

package referrals

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"referral-intake/internal/shared/storage/docdb"
)

// startMongo returns a URI for a throwaway server. REFERRALS_TEST_MONGO_URI
// reuses an existing server instead of starting a container.
func startMongo(t *testing.T, ctx context.Context) string {
	t.Helper()
	if uri := os.Getenv("REFERRALS_TEST_MONGO_URI"); uri != "" {
		return uri
	}

	mongoC, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("mongo container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = mongoC.Terminate(context.Background()) })

	uri, err := mongoC.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return uri
}

func newMongoTestRepo(t *testing.T, ctx context.Context) *MongoRepo {
	t.Helper()
	client, err := docdb.Connect(ctx, startMongo(t, ctx))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repo := NewMongoRepo(client.Database("referrals_test"))
	if err := repo.Collection.Drop(ctx); err != nil {
		t.Fatalf("drop: %v", err)
	}
	return repo
}

func TestMongoRepoAgainstMongo(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo := newMongoTestRepo(t, ctx)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	cur, err := repo.Collection.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var indexes []bson.M
	if err := cur.All(ctx, &indexes); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	if !hasIndexOn(indexes, "createdAt") {
		t.Fatalf("expected createdAt index, got %v", indexes)
	}

	clock := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	first, err := repo.Create(ctx, Referral{Name: "Ana", Phone: "+551199999999", Position: "Dev", Consent: true, ResumePath: "1772445600000-cv.pdf"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Same timestamp: the later ObjectID must still sort first.
	tied, err := repo.Create(ctx, Referral{Name: "Bruno"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock = clock.Add(time.Second)
	newest, err := repo.Create(ctx, Referral{Name: "Carla"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	refs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 3 || refs[0].ID != newest.ID || refs[1].ID != tied.ID || refs[2].ID != first.ID {
		t.Fatalf("expected newest first with id tiebreak, got %+v", refs)
	}
	if refs[2].Status != DefaultStatus || !refs[2].Consent || refs[2].ResumePath != "1772445600000-cv.pdf" {
		t.Fatalf("unexpected stored referral %+v", refs[2])
	}
	if refs[1].ResumePath != "" {
		t.Fatalf("expected no resume path, got %q", refs[1].ResumePath)
	}

	if err := repo.UpdateStatus(ctx, first.ID, "Approved"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != "Approved" || got.Name != "Ana" || got.Phone != "+551199999999" || !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("unexpected referral after update %+v", got)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, first.ID, "Rejected"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMongoRepoReadsLegacyDocuments(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo := newMongoTestRepo(t, ctx)
	res, err := repo.Collection.InsertOne(ctx, bson.M{
		"nome":      "Dora",
		"telefone":  "+5511888888888",
		"posto":     "Caixa",
		"regras":    true,
		"curriculo": "uploads/1700000000000-dora.pdf",
		"createdAt": time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	refs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 referral, got %d", len(refs))
	}
	ref := refs[0]
	if ref.ID != res.InsertedID.(primitive.ObjectID).Hex() {
		t.Fatalf("unexpected id %q", ref.ID)
	}
	if ref.Status != DefaultStatus || ref.ResumePath != "uploads/1700000000000-dora.pdf" || !ref.Consent {
		t.Fatalf("unexpected legacy referral %+v", ref)
	}
}

func hasIndexOn(indexes []bson.M, field string) bool {
	for _, idx := range indexes {
		key, ok := idx["key"].(bson.M)
		if !ok {
			continue
		}
		if _, ok := key[field]; ok {
			return true
		}
	}
	return false
}
