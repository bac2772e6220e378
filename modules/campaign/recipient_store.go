package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Recipient is one address a user has sent a campaign to. The store keeps
// a single entry per (user, recipient) pair.
type Recipient struct {
	ID             uuid.UUID `bson:"_id" json:"id"`
	UserEmail      string    `bson:"userEmail" json:"userEmail"`
	RecipientEmail string    `bson:"recipientEmail" json:"recipientEmail"`
	FirstSentAt    time.Time `bson:"firstSentAt" json:"firstSentAt"`
}

// RecipientStore tracks the audience a user has reached.
type RecipientStore interface {
	// Record stores the pair if it is not known yet. Recording an existing
	// pair is a no-op.
	Record(ctx context.Context, userEmail, recipientEmail string) error

	// ListByUser returns all recipients recorded for a user.
	ListByUser(ctx context.Context, userEmail string) ([]Recipient, error)
}

const recipientsCollection = "recipients"

type mongoRecipientStore struct {
	col *mongo.Collection
}

// NewMongoRecipientStore creates a RecipientStore backed by the
// "recipients" collection.
func NewMongoRecipientStore(db *mongo.Database) RecipientStore {
	return &mongoRecipientStore{col: db.Collection(recipientsCollection)}
}

// EnsureIndexes creates the unique (userEmail, recipientEmail) index the
// insert-if-absent behavior relies on. Call once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(recipientsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userEmail", Value: 1}, {Key: "recipientEmail", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *mongoRecipientStore) Record(ctx context.Context, userEmail, recipientEmail string) error {
	_, err := s.col.InsertOne(ctx, Recipient{
		ID:             uuid.New(),
		UserEmail:      userEmail,
		RecipientEmail: recipientEmail,
		FirstSentAt:    time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *mongoRecipientStore) ListByUser(ctx context.Context, userEmail string) ([]Recipient, error) {
	cur, err := s.col.Find(ctx, bson.M{"userEmail": userEmail})
	if err != nil {
		return nil, err
	}
	var out []Recipient
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MemoryRecipientStore is an in-memory RecipientStore for tests.
type MemoryRecipientStore struct {
	mu      sync.Mutex
	records map[string]Recipient
}

func NewMemoryRecipientStore() *MemoryRecipientStore {
	return &MemoryRecipientStore{records: make(map[string]Recipient)}
}

func (s *MemoryRecipientStore) Record(_ context.Context, userEmail, recipientEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userEmail + "\x00" + recipientEmail
	if _, ok := s.records[key]; ok {
		return nil
	}
	s.records[key] = Recipient{
		ID:             uuid.New(),
		UserEmail:      userEmail,
		RecipientEmail: recipientEmail,
		FirstSentAt:    time.Now().UTC(),
	}
	return nil
}

func (s *MemoryRecipientStore) ListByUser(_ context.Context, userEmail string) ([]Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Recipient
	for _, rec := range s.records {
		if rec.UserEmail == userEmail {
			out = append(out, rec)
		}
	}
	return out, nil
}
