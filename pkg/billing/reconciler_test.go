package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/billing"
	"github.com/maileazy/mailhub/pkg/catalog"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) GetCheckoutSession(ctx context.Context, id string) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *mockProvider) GetSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *mockProvider) GetInvoice(ctx context.Context, id string) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockProvider) GetCustomerEmail(ctx context.Context, customerID string) (string, error) {
	args := m.Called(ctx, customerID)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CancelSubscription(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProvider) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Event), args.Error(1)
}

type fixture struct {
	accounts account.Store
	payments billing.PaymentStore
	events   *billing.MemoryEventStore
	provider *mockProvider
	rec      *billing.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts: account.NewMemoryStore(),
		payments: billing.NewMemoryPaymentStore(),
		events:   billing.NewMemoryEventStore(),
		provider: &mockProvider{},
	}
	plans := catalog.NewMemoryCatalog(
		catalog.Plan{Name: "welcome", EmailsPerMonth: 1, AIRewritesPerMonth: 5, Ordinal: 1},
		catalog.Plan{Name: "pro", EmailsPerMonth: 100, AIRewritesPerMonth: 25, PriceCents: 2900, Ordinal: 2},
	)
	f.rec = billing.NewReconciler(f.accounts, plans, f.payments, f.events, f.provider, nil)
	return f
}

func (f *fixture) stubCheckout(email string) time.Time {
	periodEnd := time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC)
	f.provider.On("GetCheckoutSession", mock.Anything, "cs_123").Return(&billing.CheckoutSession{
		ID:             "cs_123",
		SubscriptionID: "sub_123",
		PlanName:       "pro",
		UserEmail:      email,
	}, nil)
	f.provider.On("GetSubscription", mock.Anything, "sub_123").Return(&billing.Subscription{
		ID:              "sub_123",
		CustomerID:      "cus_123",
		LatestInvoiceID: "in_123",
		PriceCents:      2900,
		Created:         time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       periodEnd,
		Active:          true,
	}, nil)
	f.provider.On("GetInvoice", mock.Anything, "in_123").Return(&billing.Invoice{
		ID:             "in_123",
		Number:         "INV-0001",
		SubscriptionID: "sub_123",
		CustomerID:     "cus_123",
	}, nil)
	return periodEnd
}

func TestReconciler_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("moves a consumed free account to the paid plan", func(t *testing.T) {
		f := newFixture(t)
		acc := account.New("alice@example.com", "Alice", "", "")
		acc.EmailsUsed = 1 // welcome allowance fully consumed
		require.NoError(t, f.accounts.Create(ctx, acc))
		periodEnd := f.stubCheckout("alice@example.com")

		got, err := f.rec.Activate(ctx, "alice@example.com", "pro", "cs_123")
		require.NoError(t, err)

		assert.Equal(t, "pro", got.PlanName)
		assert.True(t, got.SubscriptionStatus)
		assert.Equal(t, "sub_123", got.SubscriptionID)
		require.NotNil(t, got.RenewalDate)
		assert.True(t, got.RenewalDate.Equal(periodEnd))
		assert.Zero(t, got.EmailsUsed)
		assert.Zero(t, got.AIRewritesUsed)

		history, err := f.rec.PaymentHistory(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "INV-0001", history[0].InvoiceNumber)
		assert.EqualValues(t, 2900, history[0].PriceCents)
	})

	t.Run("unknown plan surfaces before any provider call", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.accounts.Create(ctx, account.New("alice@example.com", "Alice", "", "")))

		_, err := f.rec.Activate(ctx, "alice@example.com", "platinum", "cs_123")
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
		f.provider.AssertNotCalled(t, "GetCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("session without subscription is rejected", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.accounts.Create(ctx, account.New("alice@example.com", "Alice", "", "")))
		f.provider.On("GetCheckoutSession", mock.Anything, "cs_bare").Return(&billing.CheckoutSession{ID: "cs_bare"}, nil)

		_, err := f.rec.Activate(ctx, "alice@example.com", "pro", "cs_bare")
		assert.ErrorIs(t, err, billing.ErrNoSubscriptionInSession)
	})
}

func TestReconciler_HandleEvent_CheckoutCompleted(t *testing.T) {
	ctx := context.Background()

	checkoutEvent := &billing.Event{
		ID:             "evt_1",
		Type:           billing.EventCheckoutCompleted,
		SessionID:      "cs_123",
		SubscriptionID: "sub_123",
		PlanName:       "pro",
		UserEmail:      "alice@example.com",
	}

	t.Run("redelivery yields one payment record and identical state", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.accounts.Create(ctx, account.New("alice@example.com", "Alice", "", "")))
		f.stubCheckout("alice@example.com")

		require.NoError(t, f.rec.HandleEvent(ctx, checkoutEvent))
		first, err := f.accounts.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		require.NoError(t, f.rec.HandleEvent(ctx, checkoutEvent))
		second, err := f.accounts.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		assert.Equal(t, first.PlanName, second.PlanName)
		assert.Equal(t, first.SubscriptionID, second.SubscriptionID)
		assert.Equal(t, first.EmailsUsed, second.EmailsUsed)
		assert.Equal(t, first.SubscriptionStatus, second.SubscriptionStatus)

		history, err := f.rec.PaymentHistory(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("unknown account is acknowledged without state change", func(t *testing.T) {
		f := newFixture(t)
		f.stubCheckout("alice@example.com")

		assert.NoError(t, f.rec.HandleEvent(ctx, checkoutEvent))

		history, err := f.rec.PaymentHistory(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Empty(t, history, "no payment record may be written for an account that does not exist")
	})
}

func TestReconciler_HandleEvent_InvoicePaid(t *testing.T) {
	ctx := context.Background()

	invoiceEvent := &billing.Event{
		ID:             "evt_2",
		Type:           billing.EventInvoicePaid,
		InvoiceID:      "in_456",
		SubscriptionID: "sub_123",
		CustomerID:     "cus_123",
	}

	t.Run("advances renewal date and resets counters", func(t *testing.T) {
		f := newFixture(t)
		acc := account.New("alice@example.com", "Alice", "", "")
		acc.PlanName = "pro"
		acc.SubscriptionStatus = true
		acc.SubscriptionID = "sub_123"
		acc.EmailsUsed = 87
		acc.AIRewritesUsed = 12
		require.NoError(t, f.accounts.Create(ctx, acc))

		nextPeriodEnd := time.Date(2026, 10, 28, 0, 0, 0, 0, time.UTC)
		f.provider.On("GetSubscription", mock.Anything, "sub_123").Return(&billing.Subscription{
			ID:        "sub_123",
			PeriodEnd: nextPeriodEnd,
			Active:    true,
		}, nil)
		f.provider.On("GetCustomerEmail", mock.Anything, "cus_123").Return("alice@example.com", nil)

		require.NoError(t, f.rec.HandleEvent(ctx, invoiceEvent))

		got, err := f.accounts.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, got.RenewalDate)
		assert.True(t, got.RenewalDate.Equal(nextPeriodEnd))
		assert.Zero(t, got.EmailsUsed)
		assert.Zero(t, got.AIRewritesUsed)
		assert.True(t, got.SubscriptionStatus)
	})

	t.Run("no matching account: acknowledged, no error", func(t *testing.T) {
		f := newFixture(t)
		f.provider.On("GetSubscription", mock.Anything, "sub_123").Return(&billing.Subscription{
			ID:        "sub_123",
			PeriodEnd: time.Now().UTC(),
		}, nil)
		f.provider.On("GetCustomerEmail", mock.Anything, "cus_123").Return("ghost@example.com", nil)

		assert.NoError(t, f.rec.HandleEvent(ctx, invoiceEvent))
	})
}

func TestReconciler_HandleEvent_Unrecognized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.rec.HandleEvent(ctx, &billing.Event{
		ID:           "evt_9",
		Type:         billing.EventUnknown,
		ProviderType: "customer.updated",
		Raw:          []byte(`{"id":"cus_123"}`),
	})
	require.NoError(t, err)

	records := f.events.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "evt_9", records[0].ProviderEventID)
	assert.Equal(t, "customer.updated", records[0].ProviderType)
}

func TestReconciler_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("returns account to the free tier regardless of prior plan", func(t *testing.T) {
		f := newFixture(t)
		renewal := time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC)
		acc := account.New("alice@example.com", "Alice", "", "")
		acc.PlanName = "pro"
		acc.SubscriptionStatus = true
		acc.SubscriptionID = "sub_123"
		acc.RenewalDate = &renewal
		acc.EmailsUsed = 55
		require.NoError(t, f.accounts.Create(ctx, acc))
		f.provider.On("CancelSubscription", mock.Anything, "sub_123").Return(nil)

		got, err := f.rec.Cancel(ctx, "sub_123", "alice@example.com")
		require.NoError(t, err)

		assert.Equal(t, account.DefaultPlan, got.PlanName)
		assert.False(t, got.SubscriptionStatus)
		assert.Empty(t, got.SubscriptionID)
		assert.Nil(t, got.RenewalDate)
		assert.Zero(t, got.EmailsUsed)
	})

	t.Run("provider failure leaves account untouched", func(t *testing.T) {
		f := newFixture(t)
		acc := account.New("alice@example.com", "Alice", "", "")
		acc.PlanName = "pro"
		acc.SubscriptionStatus = true
		acc.SubscriptionID = "sub_123"
		require.NoError(t, f.accounts.Create(ctx, acc))
		f.provider.On("CancelSubscription", mock.Anything, "sub_123").Return(billing.ErrCancellationUnconfirmed)

		_, err := f.rec.Cancel(ctx, "sub_123", "alice@example.com")
		require.ErrorIs(t, err, billing.ErrCancellationUnconfirmed)

		got, err := f.accounts.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.True(t, got.SubscriptionStatus)
		assert.Equal(t, "pro", got.PlanName)
	})
}
