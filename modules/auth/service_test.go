package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maileazy/mailhub/modules/auth"
	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/email"
)

type recordingEmailSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (s *recordingEmailSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	t.Run("creates account with hashed password and welcome email", func(t *testing.T) {
		store := account.NewMemoryStore()
		emails := &recordingEmailSender{}
		h := auth.NewService(store, emails, nil).Handle()

		rec := postJSON(t, h, "/register", `{"name":"Alice","email":"alice@example.com","phone":"+123","password":"secret-password"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "passwordHash")

		acc, err := store.FindByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, account.DefaultPlan, acc.PlanName)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("secret-password")))

		require.Len(t, emails.sent, 1)
		assert.Equal(t, "alice@example.com", emails.sent[0].SendTo)
		assert.Equal(t, "welcome", emails.sent[0].Tag)
	})

	t.Run("registration survives a failed welcome email", func(t *testing.T) {
		store := account.NewMemoryStore()
		emails := &recordingEmailSender{err: email.ErrFailedToSend}
		h := auth.NewService(store, emails, nil).Handle()

		rec := postJSON(t, h, "/register", `{"name":"Bob","email":"bob@example.com","password":"secret-password"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		_, err := store.FindByEmail(context.Background(), "bob@example.com")
		assert.NoError(t, err)
	})

	t.Run("duplicate email yields conflict", func(t *testing.T) {
		store := account.NewMemoryStore()
		h := auth.NewService(store, nil, nil).Handle()

		first := postJSON(t, h, "/register", `{"name":"Alice","email":"alice@example.com","password":"secret-password"}`)
		require.Equal(t, http.StatusCreated, first.Code)

		second := postJSON(t, h, "/register", `{"name":"Alice","email":"alice@example.com","password":"secret-password"}`)
		assert.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("invalid payload yields validation error", func(t *testing.T) {
		h := auth.NewService(account.NewMemoryStore(), nil, nil).Handle()

		rec := postJSON(t, h, "/register", `{"name":"","email":"nope","password":"short"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "email")
	})
}

func TestSearchUser(t *testing.T) {
	store := account.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), account.New("alice@example.com", "Alice", "", "hash")))
	h := auth.NewService(store, nil, nil).Handle()

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/search-user/alice@example.com", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"alice@example.com"`)
		assert.NotContains(t, rec.Body.String(), "hash")
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/search-user/ghost@example.com", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
