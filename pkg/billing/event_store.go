package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EventRecord is an append-only audit entry for webhook deliveries the
// reconciler does not act on. Stored and acknowledged, never replayed.
type EventRecord struct {
	ID              uuid.UUID `bson:"_id"`
	ProviderEventID string    `bson:"providerEventId"`
	ProviderType    string    `bson:"providerType"`
	Payload         []byte    `bson:"payload"`
	ReceivedAt      time.Time `bson:"receivedAt"`
}

// EventStore appends audit records for unrecognized webhook events.
type EventStore interface {
	Append(ctx context.Context, rec *EventRecord) error
}

const eventsCollection = "webhook_events"

type mongoEventStore struct {
	col *mongo.Collection
}

// NewMongoEventStore returns an EventStore backed by the "webhook_events"
// collection.
func NewMongoEventStore(db *mongo.Database) EventStore {
	return &mongoEventStore{col: db.Collection(eventsCollection)}
}

func (s *mongoEventStore) Append(ctx context.Context, rec *EventRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	_, err := s.col.InsertOne(ctx, rec)
	return err
}

// MemoryEventStore is an in-memory EventStore for tests. It exposes the
// appended records for assertions.
type MemoryEventStore struct {
	mu      sync.Mutex
	records []EventRecord
}

// NewMemoryEventStore returns an empty in-memory EventStore.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (s *MemoryEventStore) Append(ctx context.Context, rec *EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	s.records = append(s.records, *rec)
	return nil
}

// Records returns a copy of the appended records.
func (s *MemoryEventStore) Records() []EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventRecord, len(s.records))
	copy(out, s.records)
	return out
}
