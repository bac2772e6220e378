package mailformat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrNotFound is returned when a mail format does not exist.
var ErrNotFound = errors.New("mail format not found")

// MailFormat is a reusable campaign template owned by one user.
type MailFormat struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	UserEmail string    `bson:"userEmail" json:"userEmail"`
	Name      string    `bson:"formatName" json:"formatName"`
	Subject   string    `bson:"subject" json:"subject"`
	Body      string    `bson:"body" json:"body"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Store persists mail formats.
type Store interface {
	Create(ctx context.Context, f *MailFormat) error
	Get(ctx context.Context, id uuid.UUID) (*MailFormat, error)
	ListByUser(ctx context.Context, userEmail string) ([]MailFormat, error)
	Update(ctx context.Context, f *MailFormat) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const collection = "mail_formats"

type mongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates a Store backed by the "mail_formats" collection.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{col: db.Collection(collection)}
}

func (s *mongoStore) Create(ctx context.Context, f *MailFormat) error {
	_, err := s.col.InsertOne(ctx, f)
	return err
}

func (s *mongoStore) Get(ctx context.Context, id uuid.UUID) (*MailFormat, error) {
	var f MailFormat
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *mongoStore) ListByUser(ctx context.Context, userEmail string) ([]MailFormat, error) {
	cur, err := s.col.Find(ctx, bson.M{"userEmail": userEmail})
	if err != nil {
		return nil, err
	}
	var out []MailFormat
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *mongoStore) Update(ctx context.Context, f *MailFormat) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	formats map[uuid.UUID]MailFormat
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{formats: make(map[uuid.UUID]MailFormat)}
}

func (s *MemoryStore) Create(_ context.Context, f *MailFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formats[f.ID] = *f
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*MailFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.formats[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := f
	return &out, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userEmail string) ([]MailFormat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []MailFormat
	for _, f := range s.formats {
		if f.UserEmail == userEmail {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, f *MailFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.formats[f.ID]; !ok {
		return ErrNotFound
	}
	s.formats[f.ID] = *f
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.formats[id]; !ok {
		return ErrNotFound
	}
	delete(s.formats, id)
	return nil
}
