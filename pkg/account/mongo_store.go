package account

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "accounts"

// maxUpdateAttempts bounds the optimistic retry loop. Contention on a single
// account is limited to a handful of in-flight requests, so a small bound is
// enough; hitting it indicates something pathological.
const maxUpdateAttempts = 5

type mongoStore struct {
	col *mongo.Collection
}

// NewMongoStore returns a Store backed by the "accounts" collection.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{col: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *mongoStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var acc Account
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *mongoStore) Create(ctx context.Context, acc *Account) error {
	_, err := s.col.InsertOne(ctx, acc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	return err
}

// Update implements optimistic concurrency: the replace is conditioned on the
// version read, so a concurrent writer invalidates the commit and forces a
// reload. mutate therefore always sees the state it will be committed against.
func (s *mongoStore) Update(ctx context.Context, email string, mutate func(*Account) error) (*Account, error) {
	for range maxUpdateAttempts {
		acc, err := s.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}

		prev := acc.Version
		if err := mutate(acc); err != nil {
			return nil, err
		}
		acc.Version = prev + 1
		acc.UpdatedAt = time.Now().UTC()

		res, err := s.col.ReplaceOne(ctx, bson.M{"email": email, "version": prev}, acc)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return acc, nil
		}
		// Lost the race; reload and try again.
	}
	return nil, ErrConcurrentUpdate
}
