package billing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/maileazy/mailhub/core"
	"github.com/maileazy/mailhub/pkg/account"
	pkgbilling "github.com/maileazy/mailhub/pkg/billing"
	"github.com/maileazy/mailhub/pkg/catalog"
	"github.com/maileazy/mailhub/pkg/logger"
)

// maxWebhookBody bounds the webhook payload size. Stripe deliveries are
// far below this.
const maxWebhookBody = 1 << 20

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service handles the billing HTTP surface.
type Service struct {
	reconciler *pkgbilling.Reconciler
	provider   pkgbilling.Provider
	plans      catalog.Catalog
	log        *slog.Logger
}

// NewService creates the billing service. Panics on nil dependencies.
func NewService(reconciler *pkgbilling.Reconciler, provider pkgbilling.Provider, plans catalog.Catalog, log *slog.Logger) *Service {
	if reconciler == nil {
		panic("billing: reconciler is required")
	}
	if provider == nil {
		panic("billing: payment provider is required")
	}
	if plans == nil {
		panic("billing: plan catalog is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{reconciler: reconciler, provider: provider, plans: plans, log: log}
}

// Handle returns the payments router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/checkout-session", core.Wrap(s.checkoutSession, core.WithBinders(core.BindJSON())))
	r.Post("/upgrade-plan", core.Wrap(s.upgradePlan, core.WithBinders(core.BindJSON())))
	r.Post("/cancel-subscription", core.Wrap(s.cancelSubscription, core.WithBinders(core.BindJSON())))
	r.Get("/payment-history/{email}", core.Wrap(s.paymentHistory))
	r.Post("/webhook", s.webhook)
	return r
}

// PlansHandler returns the router for the public pricing plan listing.
func (s *Service) PlansHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/get-pricing-plans", core.Wrap(s.listPlans))
	return r
}

// CheckoutSessionRequest asks for a hosted checkout session.
type CheckoutSessionRequest struct {
	PlanName  string `json:"planName"`
	UserEmail string `json:"userEmail"`
}

func (s *Service) checkoutSession(ctx core.Context, req CheckoutSessionRequest) core.Response {
	verr := core.NewValidationError()
	if req.PlanName == "" {
		verr.Add("planName", "is required")
	}
	if req.UserEmail == "" || !emailRegex.MatchString(req.UserEmail) {
		verr.Add("userEmail", "must be a valid email address")
	}
	if !verr.IsEmpty() {
		return core.JSONError(verr)
	}

	plan, err := s.plans.FindByName(ctx, req.PlanName)
	if err != nil {
		if errors.Is(err, catalog.ErrPlanNotFound) {
			return core.JSONError(core.ErrNotFound)
		}
		return s.internalError(ctx, err, "plan lookup failed")
	}

	id, err := s.provider.CreateCheckoutSession(ctx, pkgbilling.CheckoutParams{
		PriceID:   plan.StripePriceID,
		PlanName:  plan.Name,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "checkout session creation failed",
			logger.Error(err), logger.UserEmail(req.UserEmail), logger.Plan(req.PlanName))
		return core.JSONError(core.ErrBadGateway)
	}

	return core.JSON(map[string]string{"sessionId": id})
}

// UpgradePlanRequest activates a completed checkout synchronously.
type UpgradePlanRequest struct {
	UserEmail string `json:"userEmail"`
	PlanName  string `json:"planName"`
	SessionID string `json:"sessionId"`
}

func (s *Service) upgradePlan(ctx core.Context, req UpgradePlanRequest) core.Response {
	verr := core.NewValidationError()
	if req.UserEmail == "" || !emailRegex.MatchString(req.UserEmail) {
		verr.Add("userEmail", "must be a valid email address")
	}
	if req.PlanName == "" {
		verr.Add("planName", "is required")
	}
	if req.SessionID == "" {
		verr.Add("sessionId", "is required")
	}
	if !verr.IsEmpty() {
		return core.JSONError(verr)
	}

	acc, err := s.reconciler.Activate(ctx, req.UserEmail, req.PlanName, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound), errors.Is(err, catalog.ErrPlanNotFound):
			return core.JSONError(core.ErrNotFound)
		case errors.Is(err, pkgbilling.ErrNoSubscriptionInSession):
			return core.JSONError(core.ErrBadRequest)
		case errors.Is(err, pkgbilling.ErrProviderFailure):
			return core.JSONError(core.ErrBadGateway)
		default:
			return s.internalError(ctx, err, "plan activation failed")
		}
	}
	return core.JSON(acc)
}

// CancelSubscriptionRequest moves the account back to the free tier.
type CancelSubscriptionRequest struct {
	UserEmail      string `json:"userEmail"`
	SubscriptionID string `json:"subscriptionId"`
}

func (s *Service) cancelSubscription(ctx core.Context, req CancelSubscriptionRequest) core.Response {
	verr := core.NewValidationError()
	if req.UserEmail == "" || !emailRegex.MatchString(req.UserEmail) {
		verr.Add("userEmail", "must be a valid email address")
	}
	if req.SubscriptionID == "" {
		verr.Add("subscriptionId", "is required")
	}
	if !verr.IsEmpty() {
		return core.JSONError(verr)
	}

	acc, err := s.reconciler.Cancel(ctx, req.SubscriptionID, req.UserEmail)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return core.JSONError(core.ErrNotFound)
		case errors.Is(err, pkgbilling.ErrProviderFailure), errors.Is(err, pkgbilling.ErrCancellationUnconfirmed):
			return core.JSONError(core.ErrBadGateway)
		default:
			return s.internalError(ctx, err, "subscription cancellation failed")
		}
	}
	return core.JSON(acc)
}

type paymentHistoryRequest struct{}

func (s *Service) paymentHistory(ctx core.Context, _ paymentHistoryRequest) core.Response {
	userEmail := chi.URLParam(ctx.Request(), "email")

	payments, err := s.reconciler.PaymentHistory(ctx, userEmail)
	if err != nil {
		return s.internalError(ctx, err, "payment history lookup failed")
	}
	if payments == nil {
		payments = []pkgbilling.Payment{}
	}
	return core.JSON(payments)
}

type listPlansRequest struct{}

func (s *Service) listPlans(ctx core.Context, _ listPlansRequest) core.Response {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return s.internalError(ctx, err, "plan listing failed")
	}
	return core.JSON(plans)
}

// webhook is a raw http.HandlerFunc: signature verification needs the
// exact request body bytes, so the typed binder path does not apply.
func (s *Service) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "unreadable payload", http.StatusBadRequest)
		return
	}

	ev, err := s.provider.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, pkgbilling.ErrInvalidSignature) {
			s.log.WarnContext(r.Context(), "webhook signature rejected", logger.Error(err))
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		s.log.ErrorContext(r.Context(), "webhook parsing failed", logger.Error(err))
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.reconciler.HandleEvent(r.Context(), ev); err != nil {
		// Unacknowledged deliveries are retried by the provider.
		s.log.ErrorContext(r.Context(), "webhook event processing failed",
			logger.Error(err), logger.EventType(string(ev.Type)))
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"received":true}`))
}

func (s *Service) internalError(ctx core.Context, err error, msg string) core.Response {
	s.log.ErrorContext(ctx, msg, logger.Error(err))
	return core.JSONError(core.ErrInternalServerError)
}
