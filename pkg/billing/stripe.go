package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/checkout/session"
	"github.com/stripe/stripe-go/customer"
	"github.com/stripe/stripe-go/invoice"
	"github.com/stripe/stripe-go/sub"
	"github.com/stripe/stripe-go/webhook"
)

// StripeConfig holds the Stripe credentials and redirect targets.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	SuccessURL    string `env:"STRIPE_SUCCESS_URL,required"`
	CancelURL     string `env:"STRIPE_CANCEL_URL,required"`
}

// stripeProvider implements Provider on the official Stripe SDK. The SDK
// uses package-level calls keyed by stripe.Key, set once at construction.
type stripeProvider struct {
	config StripeConfig
}

// NewStripeProvider configures the Stripe SDK and returns a Provider.
func NewStripeProvider(cfg StripeConfig) (Provider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	stripe.Key = cfg.SecretKey
	return &stripeProvider{config: cfg}, nil
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	req := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Items: []*stripe.CheckoutSessionSubscriptionDataItemsParams{{
				Plan:     stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			}},
		},
		SuccessURL: stripe.String(p.config.SuccessURL),
		CancelURL:  stripe.String(p.config.CancelURL),
	}
	// The webhook handler reads these back from the completed session.
	req.AddMetadata("planName", params.PlanName)
	req.AddMetadata("userEmail", params.UserEmail)

	sess, err := session.New(req)
	if err != nil {
		return "", errors.Join(ErrProviderFailure, err)
	}
	return sess.ID, nil
}

func (p *stripeProvider) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	sess, err := session.Get(id, nil)
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}
	return normalizeSession(sess), nil
}

func (p *stripeProvider) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	s, err := sub.Get(id, nil)
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}

	out := &Subscription{
		ID:        s.ID,
		Created:   time.Unix(s.Created, 0).UTC(),
		PeriodEnd: time.Unix(s.CurrentPeriodEnd, 0).UTC(),
		Active:    s.Status == stripe.SubscriptionStatusActive || s.Status == stripe.SubscriptionStatusTrialing,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.LatestInvoice != nil {
		out.LatestInvoiceID = s.LatestInvoice.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Plan != nil {
		out.PriceCents = s.Items.Data[0].Plan.Amount
	}
	return out, nil
}

func (p *stripeProvider) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, err := invoice.Get(id, nil)
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}

	out := &Invoice{ID: inv.ID, Number: inv.Number}
	if inv.Subscription != nil {
		out.SubscriptionID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	return out, nil
}

func (p *stripeProvider) GetCustomerEmail(ctx context.Context, customerID string) (string, error) {
	cust, err := customer.Get(customerID, nil)
	if err != nil {
		return "", errors.Join(ErrProviderFailure, err)
	}
	return cust.Email, nil
}

func (p *stripeProvider) CancelSubscription(ctx context.Context, id string) error {
	s, err := sub.Cancel(id, nil)
	if err != nil {
		return errors.Join(ErrProviderFailure, err)
	}
	if s.Status != stripe.SubscriptionStatusCanceled {
		return fmt.Errorf("%w: status %s", ErrCancellationUnconfirmed, s.Status)
	}
	return nil
}

func (p *stripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.config.WebhookSecret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}

	out := &Event{
		ID:           event.ID,
		ProviderType: event.Type,
		Type:         EventUnknown,
		Raw:          json.RawMessage(event.Data.Raw),
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		norm := normalizeSession(&sess)
		out.Type = EventCheckoutCompleted
		out.SessionID = norm.ID
		out.SubscriptionID = norm.SubscriptionID
		out.PlanName = norm.PlanName
		out.UserEmail = norm.UserEmail

	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		out.Type = EventInvoicePaid
		out.InvoiceID = inv.ID
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
	}

	return out, nil
}

func normalizeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:        sess.ID,
		PlanName:  sess.Metadata["planName"],
		UserEmail: sess.Metadata["userEmail"],
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out
}
