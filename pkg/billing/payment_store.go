package billing

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Payment is one completed billing invoice. The invoice number is the
// document key, so redelivered provider events cannot create a second
// record for the same invoice.
type Payment struct {
	InvoiceNumber   string    `bson:"_id" json:"invoiceNumber"`
	UserEmail       string    `bson:"userEmail" json:"userEmail"`
	PlanName        string    `bson:"planName" json:"planName"`
	PriceCents      int64     `bson:"price" json:"price"`
	SubscriptionID  string    `bson:"subscriptionId" json:"subscriptionId"`
	TransactionDate time.Time `bson:"transactionDate" json:"transactionDate"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// PaymentStore persists payment records. Records are immutable once written.
type PaymentStore interface {
	// InsertIfAbsent writes the payment unless one with the same invoice
	// number already exists. Reports whether a record was created; an
	// existing record is not an error, it is the idempotence path.
	InsertIfAbsent(ctx context.Context, p *Payment) (created bool, err error)

	// ListByUser returns the user's payments, most recent first.
	ListByUser(ctx context.Context, email string) ([]Payment, error)
}

const paymentsCollection = "payments"

type mongoPaymentStore struct {
	col *mongo.Collection
}

// NewMongoPaymentStore returns a PaymentStore backed by the "payments"
// collection.
func NewMongoPaymentStore(db *mongo.Database) PaymentStore {
	return &mongoPaymentStore{col: db.Collection(paymentsCollection)}
}

func (s *mongoPaymentStore) InsertIfAbsent(ctx context.Context, p *Payment) (bool, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *mongoPaymentStore) ListByUser(ctx context.Context, email string) ([]Payment, error) {
	cur, err := s.col.Find(ctx, bson.M{"userEmail": email},
		options.Find().SetSort(bson.D{{Key: "transactionDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var payments []Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// memoryPaymentStore is an in-memory PaymentStore for tests.
type memoryPaymentStore struct {
	mu       sync.Mutex
	payments map[string]Payment
}

// NewMemoryPaymentStore returns an empty in-memory PaymentStore.
func NewMemoryPaymentStore() PaymentStore {
	return &memoryPaymentStore{payments: make(map[string]Payment)}
}

func (s *memoryPaymentStore) InsertIfAbsent(ctx context.Context, p *Payment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[p.InvoiceNumber]; ok {
		return false, nil
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.payments[p.InvoiceNumber] = *p
	return true, nil
}

func (s *memoryPaymentStore) ListByUser(ctx context.Context, email string) ([]Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Payment
	for _, p := range s.payments {
		if p.UserEmail == email {
			out = append(out, p)
		}
	}
	return out, nil
}
