package mailformat

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maileazy/mailhub/core"
	"github.com/maileazy/mailhub/pkg/logger"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service handles mail format CRUD.
type Service struct {
	store Store
	log   *slog.Logger
}

// NewService creates the mail format service. Panics on a nil store.
func NewService(store Store, log *slog.Logger) *Service {
	if store == nil {
		panic("mailformat: store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

// Handle returns the module router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/", core.Wrap(s.create, core.WithBinders(core.BindJSON())))
	r.Get("/user/{email}", core.Wrap(s.listByUser))
	r.Get("/{id}", core.Wrap(s.get))
	r.Put("/{id}", core.Wrap(s.update, core.WithBinders(core.BindJSON())))
	r.Delete("/{id}", core.Wrap(s.remove))
	return r
}

// FormatRequest is the create/update payload.
type FormatRequest struct {
	UserEmail string `json:"userEmail"`
	Name      string `json:"formatName"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (req FormatRequest) validate() error {
	verr := core.NewValidationError()
	if req.UserEmail == "" || !emailRegex.MatchString(req.UserEmail) {
		verr.Add("userEmail", "must be a valid email address")
	}
	if req.Name == "" {
		verr.Add("formatName", "is required")
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

func (s *Service) create(ctx core.Context, req FormatRequest) core.Response {
	if err := req.validate(); err != nil {
		return core.JSONError(err)
	}

	now := time.Now().UTC()
	f := &MailFormat{
		ID:        uuid.New(),
		UserEmail: req.UserEmail,
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, f); err != nil {
		s.log.ErrorContext(ctx, "mail format creation failed", logger.Error(err), logger.UserEmail(req.UserEmail))
		return core.JSONError(core.ErrInternalServerError)
	}
	return core.JSONStatus(http.StatusCreated, f)
}

type emptyRequest struct{}

func (s *Service) get(ctx core.Context, _ emptyRequest) core.Response {
	id, err := uuid.Parse(chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return core.JSONError(core.ErrBadRequest)
	}

	f, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.JSONError(core.ErrNotFound)
		}
		s.log.ErrorContext(ctx, "mail format lookup failed", logger.Error(err))
		return core.JSONError(core.ErrInternalServerError)
	}
	return core.JSON(f)
}

func (s *Service) listByUser(ctx core.Context, _ emptyRequest) core.Response {
	userEmail := chi.URLParam(ctx.Request(), "email")

	formats, err := s.store.ListByUser(ctx, userEmail)
	if err != nil {
		s.log.ErrorContext(ctx, "mail format listing failed", logger.Error(err), logger.UserEmail(userEmail))
		return core.JSONError(core.ErrInternalServerError)
	}
	if formats == nil {
		formats = []MailFormat{}
	}
	return core.JSON(formats)
}

func (s *Service) update(ctx core.Context, req FormatRequest) core.Response {
	id, err := uuid.Parse(chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return core.JSONError(core.ErrBadRequest)
	}
	if err := req.validate(); err != nil {
		return core.JSONError(err)
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.JSONError(core.ErrNotFound)
		}
		s.log.ErrorContext(ctx, "mail format lookup failed", logger.Error(err))
		return core.JSONError(core.ErrInternalServerError)
	}

	existing.Name = req.Name
	existing.Subject = req.Subject
	existing.Body = req.Body
	existing.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, existing); err != nil {
		s.log.ErrorContext(ctx, "mail format update failed", logger.Error(err))
		return core.JSONError(core.ErrInternalServerError)
	}
	return core.JSON(existing)
}

func (s *Service) remove(ctx core.Context, _ emptyRequest) core.Response {
	id, err := uuid.Parse(chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return core.JSONError(core.ErrBadRequest)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.JSONError(core.ErrNotFound)
		}
		s.log.ErrorContext(ctx, "mail format deletion failed", logger.Error(err))
		return core.JSONError(core.ErrInternalServerError)
	}
	return core.JSON(map[string]bool{"deleted": true})
}
