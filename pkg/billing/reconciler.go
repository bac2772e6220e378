package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/catalog"
)

// Reconciler applies payment-provider lifecycle events to account state.
//
// It is a small state machine over Account.SubscriptionStatus:
//
//	Free   (subscriptionStatus=false, plan=welcome)
//	Active (subscriptionStatus=true,  plan=paid, subscriptionId set)
//
// Every transition is idempotent with respect to redelivery: payment records
// are keyed by invoice number, and usage counters are reset with an absolute
// "set to zero" rather than a relative adjustment. Webhook deliveries are
// at-least-once and unordered, so nothing here may assume it runs exactly
// once or in sequence.
type Reconciler struct {
	accounts account.Store
	plans    catalog.Catalog
	payments PaymentStore
	events   EventStore
	provider Provider
	log      *slog.Logger
}

// NewReconciler creates a Reconciler. Panics on nil required dependencies to
// fail fast during initialization. A nil logger falls back to slog.Default.
func NewReconciler(accounts account.Store, plans catalog.Catalog, payments PaymentStore, events EventStore, provider Provider, log *slog.Logger) *Reconciler {
	if accounts == nil {
		panic("billing: account store is required")
	}
	if plans == nil {
		panic("billing: plan catalog is required")
	}
	if payments == nil {
		panic("billing: payment store is required")
	}
	if events == nil {
		panic("billing: event store is required")
	}
	if provider == nil {
		panic("billing: provider is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		accounts: accounts,
		plans:    plans,
		payments: payments,
		events:   events,
		provider: provider,
		log:      log,
	}
}

// Activate applies a completed checkout to the account: records the payment
// keyed by invoice number and moves the account to the Active state with
// fresh usage counters. Safe to call more than once for the same session.
// Used by both the synchronous upgrade path and the webhook path.
func (r *Reconciler) Activate(ctx context.Context, userEmail, planName, sessionID string) (*account.Account, error) {
	if _, err := r.plans.FindByName(ctx, planName); err != nil {
		return nil, err
	}
	// Resolve the account up front so a checkout for an unknown account
	// leaves no state behind, not even a payment record.
	if _, err := r.accounts.FindByEmail(ctx, userEmail); err != nil {
		return nil, err
	}

	sess, err := r.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.SubscriptionID == "" {
		return nil, ErrNoSubscriptionInSession
	}

	sub, err := r.provider.GetSubscription(ctx, sess.SubscriptionID)
	if err != nil {
		return nil, err
	}

	inv, err := r.provider.GetInvoice(ctx, sub.LatestInvoiceID)
	if err != nil {
		return nil, err
	}

	created, err := r.payments.InsertIfAbsent(ctx, &Payment{
		InvoiceNumber:   inv.Number,
		UserEmail:       userEmail,
		PlanName:        planName,
		PriceCents:      sub.PriceCents,
		SubscriptionID:  sub.ID,
		TransactionDate: sub.Created,
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	if !created {
		r.log.InfoContext(ctx, "payment already recorded, applying account state idempotently",
			slog.String("invoice", inv.Number), slog.String("email", userEmail))
	}

	periodEnd := sub.PeriodEnd
	acc, err := r.accounts.Update(ctx, userEmail, func(a *account.Account) error {
		a.PlanName = planName
		a.SubscriptionStatus = true
		a.SubscriptionID = sub.ID
		a.RenewalDate = &periodEnd
		a.ResetUsage()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.InfoContext(ctx, "subscription activated",
		slog.String("email", userEmail), slog.String("plan", planName), slog.String("subscription", sub.ID))
	return acc, nil
}

// Cancel cancels the subscription at the provider and, once confirmed,
// returns the account to the free tier.
func (r *Reconciler) Cancel(ctx context.Context, subscriptionID, userEmail string) (*account.Account, error) {
	if err := r.provider.CancelSubscription(ctx, subscriptionID); err != nil {
		return nil, err
	}

	acc, err := r.accounts.Update(ctx, userEmail, func(a *account.Account) error {
		a.SubscriptionStatus = false
		a.SubscriptionID = ""
		a.PlanName = account.DefaultPlan
		a.RenewalDate = nil
		a.ResetUsage()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.InfoContext(ctx, "subscription cancelled",
		slog.String("email", userEmail), slog.String("subscription", subscriptionID))
	return acc, nil
}

// HandleEvent applies one verified webhook event. Unmatched accounts are
// logged and acknowledged rather than failed: the provider redelivers on
// error, and an account-side lookup gap must not block its delivery queue
// forever. Provider call failures do propagate so the delivery is retried.
func (r *Reconciler) HandleEvent(ctx context.Context, ev *Event) error {
	switch ev.Type {
	case EventCheckoutCompleted:
		_, err := r.Activate(ctx, ev.UserEmail, ev.PlanName, ev.SessionID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, account.ErrNotFound):
			r.log.WarnContext(ctx, "checkout completed for unknown account, acknowledging",
				slog.String("email", ev.UserEmail), slog.String("event", ev.ID))
			return nil
		case errors.Is(err, catalog.ErrPlanNotFound):
			r.log.ErrorContext(ctx, "checkout completed for unconfigured plan, acknowledging",
				slog.String("plan", ev.PlanName), slog.String("event", ev.ID))
			return nil
		default:
			return err
		}

	case EventInvoicePaid:
		return r.renew(ctx, ev)

	default:
		if err := r.events.Append(ctx, &EventRecord{
			ProviderEventID: ev.ID,
			ProviderType:    ev.ProviderType,
			Payload:         ev.Raw,
		}); err != nil {
			return fmt.Errorf("audit webhook event: %w", err)
		}
		r.log.DebugContext(ctx, "unrecognized webhook event stored",
			slog.String("event", ev.ID), slog.String("type", ev.ProviderType))
		return nil
	}
}

// renew pushes the renewal date forward and opens a fresh usage bucket.
// Both effects are idempotent, so a redelivered invoice event converges to
// the same state.
func (r *Reconciler) renew(ctx context.Context, ev *Event) error {
	sub, err := r.provider.GetSubscription(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}

	email, err := r.provider.GetCustomerEmail(ctx, ev.CustomerID)
	if err != nil {
		return err
	}

	periodEnd := sub.PeriodEnd
	_, err = r.accounts.Update(ctx, email, func(a *account.Account) error {
		a.RenewalDate = &periodEnd
		a.ResetUsage()
		return nil
	})
	if errors.Is(err, account.ErrNotFound) {
		r.log.WarnContext(ctx, "invoice paid for unknown account, acknowledging",
			slog.String("email", email), slog.String("event", ev.ID))
		return nil
	}
	if err != nil {
		return err
	}

	r.log.InfoContext(ctx, "subscription renewed",
		slog.String("email", email), slog.String("subscription", ev.SubscriptionID))
	return nil
}

// PaymentHistory returns the account's payment records, most recent first.
func (r *Reconciler) PaymentHistory(ctx context.Context, email string) ([]Payment, error) {
	return r.payments.ListByUser(ctx, email)
}
