package billing

import (
	"context"
	"encoding/json"
	"time"
)

// Provider abstracts the payment processor. The reconciler and the HTTP
// surface only ever see these normalized types; provider-specific quirks
// (expandable objects, signature schemes) stay inside the implementation.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session for a
	// subscription purchase and returns its ID.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)

	// GetCheckoutSession retrieves a checkout session by ID.
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)

	// GetSubscription retrieves a subscription by ID.
	GetSubscription(ctx context.Context, id string) (*Subscription, error)

	// GetInvoice retrieves an invoice by ID.
	GetInvoice(ctx context.Context, id string) (*Invoice, error)

	// GetCustomerEmail resolves a provider customer ID to the billing email.
	GetCustomerEmail(ctx context.Context, customerID string) (string, error)

	// CancelSubscription cancels a subscription and confirms the provider
	// reports it as cancelled.
	CancelSubscription(ctx context.Context, id string) error

	// ParseWebhook verifies the delivery signature and normalizes the
	// payload into an Event. Returns ErrInvalidSignature when the
	// authenticity check fails; no state may be mutated in that case.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// CheckoutParams describes a checkout session to create.
type CheckoutParams struct {
	PriceID    string // provider's price identifier from the plan catalog
	PlanName   string // carried through session metadata for reconciliation
	UserEmail  string // carried through session metadata for reconciliation
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a retrieved checkout session.
type CheckoutSession struct {
	ID             string
	SubscriptionID string // empty until the session completed with a subscription
	PlanName       string // from session metadata
	UserEmail      string // from session metadata
}

// Subscription is the provider's view of a subscription.
type Subscription struct {
	ID              string
	CustomerID      string
	LatestInvoiceID string
	PriceCents      int64
	Created         time.Time
	PeriodEnd       time.Time // current period end, becomes the renewal date
	Active          bool
}

// Invoice carries the fields the reconciler needs. Number is the
// human-readable invoice number used as the payment record's idempotence
// key.
type Invoice struct {
	ID             string
	Number         string
	SubscriptionID string
	CustomerID     string
}

// EventType is the normalized lifecycle event kind.
type EventType string

const (
	EventCheckoutCompleted EventType = "checkout_completed"
	EventInvoicePaid       EventType = "invoice_paid"
	EventUnknown           EventType = "unknown"
)

// Event is a normalized, signature-verified webhook delivery. Deliveries are
// at-least-once; everything downstream of ParseWebhook must tolerate
// duplicates.
type Event struct {
	ID             string    // provider's event ID
	Type           EventType // normalized kind
	ProviderType   string    // original provider event name
	SessionID      string    // set for checkout_completed
	SubscriptionID string    // set for checkout_completed and invoice_paid
	InvoiceID      string    // set for invoice_paid
	CustomerID     string    // provider customer reference
	PlanName       string    // from session metadata, checkout_completed only
	UserEmail      string    // from session metadata, checkout_completed only
	Raw            json.RawMessage
}
