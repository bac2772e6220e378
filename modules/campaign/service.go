package campaign

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/maileazy/mailhub/core"
	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/catalog"
	"github.com/maileazy/mailhub/pkg/entitlement"
	"github.com/maileazy/mailhub/pkg/ledger"
	"github.com/maileazy/mailhub/pkg/logger"
	"github.com/maileazy/mailhub/pkg/mailer"
	"github.com/maileazy/mailhub/pkg/rewrite"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var errNoCredits = core.NewHTTPError(http.StatusPaymentRequired, "no_credits_available")

// Service wires the metered operations together.
type Service struct {
	checker    entitlement.Checker
	ledger     ledger.Ledger
	sender     mailer.Sender
	rewriter   rewrite.Rewriter
	recipients RecipientStore
	log        *slog.Logger
}

// NewService creates the campaign service. Panics on nil core
// dependencies. The rewriter and recipient store are optional: without a
// rewriter the rewrite endpoint reports the feature unavailable, without a
// recipient store sends are simply not tracked.
func NewService(
	checker entitlement.Checker,
	led ledger.Ledger,
	sender mailer.Sender,
	rewriter rewrite.Rewriter,
	recipients RecipientStore,
	log *slog.Logger,
) *Service {
	if checker == nil {
		panic("campaign: entitlement checker is required")
	}
	if led == nil {
		panic("campaign: ledger is required")
	}
	if sender == nil {
		panic("campaign: mail sender is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		checker:    checker,
		ledger:     led,
		sender:     sender,
		rewriter:   rewriter,
		recipients: recipients,
		log:        log,
	}
}

// Handle returns the campaign router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/send-email", core.Wrap(s.sendEmail, core.WithBinders(core.BindJSON())))
	r.Get("/recipients/{email}", core.Wrap(s.listRecipients))
	return r
}

// RewriteHandler returns the router for the AI rewrite endpoint, mounted
// separately to keep the original URL space.
func (s *Service) RewriteHandler() http.Handler {
	r := chi.NewRouter()
	r.Post("/rewrite-api", core.Wrap(s.rewriteText, core.WithBinders(core.BindJSON())))
	return r
}

// AttachmentPayload carries an optional base64-encoded file.
type AttachmentPayload struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"contentType"`
	ContentBase64 string `json:"contentBase64"`
}

// SendEmailRequest is the campaign send payload.
type SendEmailRequest struct {
	UserEmail  string             `json:"userEmail"`
	Recipients []string           `json:"recipients"`
	Subject    string             `json:"subject"`
	Body       string             `json:"body"`
	Attachment *AttachmentPayload `json:"attachment,omitempty"`
}

func (req SendEmailRequest) validate() error {
	verr := core.NewValidationError()
	if req.UserEmail == "" || !emailRegex.MatchString(req.UserEmail) {
		verr.Add("userEmail", "must be a valid email address")
	}
	if len(req.Recipients) == 0 {
		verr.Add("recipients", "at least one recipient is required")
	}
	for _, to := range req.Recipients {
		if !emailRegex.MatchString(to) {
			verr.Add("recipients", "invalid address: "+to)
			break
		}
	}
	if req.Subject == "" {
		verr.Add("subject", "is required")
	}
	if req.Body == "" {
		verr.Add("body", "is required")
	}
	if verr.IsEmpty() {
		return nil
	}
	return verr
}

// SendEmailResponse reports the outcome per request.
type SendEmailResponse struct {
	Sent      int      `json:"sent"`
	Failed    []string `json:"failed,omitempty"`
	Remaining int64    `json:"remaining"`
}

func (s *Service) sendEmail(ctx core.Context, req SendEmailRequest) core.Response {
	if err := req.validate(); err != nil {
		return core.JSONError(err)
	}

	attachment, err := decodeAttachment(req.Attachment)
	if err != nil {
		verr := core.NewValidationError()
		verr.Add("attachment", "contentBase64 is not valid base64")
		return core.JSONError(verr)
	}

	resp := SendEmailResponse{}
	var failed []string
	for _, to := range req.Recipients {
		// Entitlement is re-checked per recipient: every delivered message
		// consumes one credit.
		if err := s.checker.Check(ctx, req.UserEmail, catalog.ActionSendEmail); err != nil {
			if resp.Sent == 0 {
				return s.meteringError(ctx, err, req.UserEmail)
			}
			// Partial run: credits ran out mid-batch.
			failed = append(failed, to)
			resp.Remaining = 0
			continue
		}

		if err := s.sender.Send(ctx, mailer.Message{
			UserEmail:  req.UserEmail,
			To:         to,
			Subject:    req.Subject,
			HTMLBody:   req.Body,
			Attachment: attachment,
		}); err != nil {
			// Nothing was delivered for this recipient, so nothing is
			// debited either.
			s.log.WarnContext(ctx, "campaign send failed",
				logger.Error(err), logger.UserEmail(req.UserEmail), slog.String("recipient", to))
			failed = append(failed, to)
			continue
		}
		resp.Sent++

		remaining, err := s.ledger.Debit(ctx, req.UserEmail, catalog.ActionSendEmail)
		if err != nil {
			// The message is out; the debit failure must not fail the
			// request. It is logged for reconciliation.
			s.log.ErrorContext(ctx, "debit failed after successful send",
				logger.Error(err), logger.UserEmail(req.UserEmail), slog.String("recipient", to))
		} else {
			resp.Remaining = remaining
		}

		if s.recipients != nil {
			if err := s.recipients.Record(ctx, req.UserEmail, to); err != nil {
				s.log.WarnContext(ctx, "recipient tracking failed",
					logger.Error(err), logger.UserEmail(req.UserEmail))
			}
		}
	}

	if resp.Sent == 0 {
		return core.JSONError(core.ErrBadGateway)
	}
	resp.Failed = failed
	return core.JSON(resp)
}

// RewriteRequest is the AI rewrite payload.
type RewriteRequest struct {
	UserEmail string `json:"userEmail"`
	Text      string `json:"text"`
}

// RewriteResponse carries the rewritten text.
type RewriteResponse struct {
	Text      string `json:"text"`
	Remaining int64  `json:"remaining"`
}

func (s *Service) rewriteText(ctx core.Context, req RewriteRequest) core.Response {
	verr := core.NewValidationError()
	if req.UserEmail == "" || !emailRegex.MatchString(req.UserEmail) {
		verr.Add("userEmail", "must be a valid email address")
	}
	if req.Text == "" {
		verr.Add("text", "is required")
	}
	if !verr.IsEmpty() {
		return core.JSONError(verr)
	}
	if s.rewriter == nil {
		return core.JSONError(core.ErrServiceUnavailable)
	}

	if err := s.checker.Check(ctx, req.UserEmail, catalog.ActionRewriteText); err != nil {
		return s.meteringError(ctx, err, req.UserEmail)
	}

	out, err := s.rewriter.Rewrite(ctx, req.Text)
	if err != nil {
		s.log.WarnContext(ctx, "rewrite upstream failed", logger.Error(err), logger.UserEmail(req.UserEmail))
		return core.JSONError(core.ErrBadGateway)
	}

	resp := RewriteResponse{Text: out}
	remaining, err := s.ledger.Debit(ctx, req.UserEmail, catalog.ActionRewriteText)
	if err != nil {
		s.log.ErrorContext(ctx, "debit failed after successful rewrite",
			logger.Error(err), logger.UserEmail(req.UserEmail))
	} else {
		resp.Remaining = remaining
	}
	return core.JSON(resp)
}

type listRecipientsRequest struct{}

func (s *Service) listRecipients(ctx core.Context, _ listRecipientsRequest) core.Response {
	if s.recipients == nil {
		return core.JSONError(core.ErrServiceUnavailable)
	}
	userEmail := chi.URLParam(ctx.Request(), "email")
	recs, err := s.recipients.ListByUser(ctx, userEmail)
	if err != nil {
		s.log.ErrorContext(ctx, "recipient listing failed", logger.Error(err), logger.UserEmail(userEmail))
		return core.JSONError(core.ErrInternalServerError)
	}
	if recs == nil {
		recs = []Recipient{}
	}
	return core.JSON(recs)
}

// meteringError maps entitlement and ledger failures to HTTP errors.
func (s *Service) meteringError(ctx core.Context, err error, userEmail string) core.Response {
	switch {
	case errors.Is(err, account.ErrNotFound):
		return core.JSONError(core.ErrNotFound)
	case errors.Is(err, entitlement.ErrNoCreditsAvailable), errors.Is(err, ledger.ErrInsufficientCredit):
		return core.JSONError(errNoCredits)
	case errors.Is(err, entitlement.ErrPlanNotConfigured):
		// Operator-side data gap; the client gets a generic failure.
		s.log.ErrorContext(ctx, "account references unconfigured plan",
			logger.Error(err), logger.UserEmail(userEmail))
		return core.JSONError(core.ErrInternalServerError)
	default:
		s.log.ErrorContext(ctx, "entitlement check failed", logger.Error(err), logger.UserEmail(userEmail))
		return core.JSONError(core.ErrInternalServerError)
	}
}

func decodeAttachment(p *AttachmentPayload) (*mailer.Attachment, error) {
	if p == nil {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(p.ContentBase64)
	if err != nil {
		return nil, err
	}
	return &mailer.Attachment{
		Filename:    p.Filename,
		ContentType: p.ContentType,
		Data:        data,
	}, nil
}
