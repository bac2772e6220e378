package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/maileazy/mailhub/core"
	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/email"
	"github.com/maileazy/mailhub/pkg/logger"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service handles registration and account lookup. The transactional email
// sender is optional; registration succeeds even when the welcome notice
// cannot be delivered.
type Service struct {
	accounts account.Store
	emails   email.EmailSender
	log      *slog.Logger
}

// NewService creates the auth service. Panics on a nil account store.
func NewService(accounts account.Store, emails email.EmailSender, log *slog.Logger) *Service {
	if accounts == nil {
		panic("auth: account store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{accounts: accounts, emails: emails, log: log}
}

// Handle returns the module router.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/register", core.Wrap(s.register, core.WithBinders(core.BindJSON())))
	r.Get("/search-user/{email}", core.Wrap(s.searchUser))
	return r
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (req RegisterRequest) validate() error {
	verr := core.NewValidationError()
	if req.Name == "" {
		verr.Add("name", "is required")
	}
	if req.Email == "" || !emailRegex.MatchString(req.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if len(req.Password) < 8 {
		verr.Add("password", "must be at least 8 characters")
	}
	if verr.IsEmpty() {
		return nil
	}
	return verr
}

func (s *Service) register(ctx core.Context, req RegisterRequest) core.Response {
	if err := req.validate(); err != nil {
		return core.JSONError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return core.JSONError(err)
	}

	acc := account.New(req.Email, req.Name, req.Phone, string(hash))
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrAlreadyExists) {
			return core.JSONError(core.ErrConflict)
		}
		s.log.ErrorContext(ctx, "failed to create account", logger.Error(err), logger.UserEmail(req.Email))
		return core.JSONError(core.ErrInternalServerError)
	}

	// The welcome email is best effort: the account exists either way.
	if s.emails != nil {
		params := email.WelcomeEmail(acc.Name)
		params.SendTo = acc.Email
		if err := s.emails.SendEmail(ctx, params); err != nil {
			s.log.WarnContext(ctx, "welcome email not delivered", logger.Error(err), logger.UserEmail(acc.Email))
		}
	}

	return core.JSONStatus(http.StatusCreated, acc)
}

type searchUserRequest struct{}

func (s *Service) searchUser(ctx core.Context, _ searchUserRequest) core.Response {
	addr := chi.URLParam(ctx.Request(), "email")

	acc, err := s.accounts.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return core.JSONError(core.ErrNotFound)
		}
		s.log.ErrorContext(ctx, "account lookup failed", logger.Error(err), logger.UserEmail(addr))
		return core.JSONError(core.ErrInternalServerError)
	}
	return core.JSON(acc)
}
