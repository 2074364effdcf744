package referrals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection is the collection the original deployment wrote to.
const MongoCollection = "indicacaos"

// MongoRepo implements Repo on a MongoDB collection.
type MongoRepo struct {
	Collection *mongo.Collection
	now        func() time.Time
}

// NewMongoRepo constructs a MongoRepo on the referrals collection of db.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Collection: db.Collection(MongoCollection), now: time.Now}
}

type mongoReferral struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"nome"`
	Phone     string             `bson:"telefone"`
	Position  string             `bson:"posto"`
	Consent   bool               `bson:"regras"`
	Resume    *string            `bson:"curriculo"`
	CreatedAt time.Time          `bson:"createdAt"`
	Status    string             `bson:"status"`
}

func toMongo(ref Referral) mongoReferral {
	doc := mongoReferral{
		Name:      ref.Name,
		Phone:     ref.Phone,
		Position:  ref.Position,
		Consent:   ref.Consent,
		CreatedAt: ref.CreatedAt,
		Status:    ref.Status,
	}
	if ref.ResumePath != "" {
		path := ref.ResumePath
		doc.Resume = &path
	}
	return doc
}

func fromMongo(doc mongoReferral) Referral {
	ref := Referral{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Phone:     doc.Phone,
		Position:  doc.Position,
		Consent:   doc.Consent,
		CreatedAt: doc.CreatedAt.UTC(),
		Status:    doc.Status,
	}
	if doc.Resume != nil {
		ref.ResumePath = *doc.Resume
	}
	if ref.Status == "" {
		ref.Status = DefaultStatus
	}
	return ref
}

// EnsureIndexes creates the createdAt index used by List.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create createdAt index: %w", err)
	}
	return nil
}

// Create inserts a new document with a fresh ObjectID.
func (r *MongoRepo) Create(ctx context.Context, ref Referral) (Referral, error) {
	if ref.Status == "" {
		ref.Status = DefaultStatus
	}
	// Mongo stores milliseconds; truncate so the returned value matches a re-read.
	ref.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	doc := toMongo(ref)
	doc.ID = primitive.NewObjectID()
	if _, err := r.Collection.InsertOne(ctx, doc); err != nil {
		return Referral{}, fmt.Errorf("insert referral: %w", err)
	}
	ref.ID = doc.ID.Hex()
	return ref, nil
}

// List returns every referral ordered newest-first.
func (r *MongoRepo) List(ctx context.Context) ([]Referral, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.Collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	defer cur.Close(ctx)

	out := []Referral{}
	for cur.Next(ctx) {
		var doc mongoReferral
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode referral: %w", err)
		}
		out = append(out, fromMongo(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return out, nil
}

// GetByID fetches a referral by its hex ObjectID.
func (r *MongoRepo) GetByID(ctx context.Context, id string) (Referral, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Referral{}, ErrNotFound
	}

	var doc mongoReferral
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Referral{}, ErrNotFound
		}
		return Referral{}, fmt.Errorf("get referral: %w", err)
	}
	return fromMongo(doc), nil
}

// UpdateStatus sets the status field only.
func (r *MongoRepo) UpdateStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("update referral status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a referral document.
func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete referral: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*MongoRepo)(nil)
