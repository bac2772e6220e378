package mailer

import (
	"context"
	"encoding/base64"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Config holds the Google OAuth client used for every per-user Gmail
// channel. Tokens themselves are per user and come from the TokenStore.
type Config struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`
	RedirectURL        string `env:"GOOGLE_REDIRECT_URL,required"`
}

// GmailSender sends campaign messages through the Gmail API using the
// sending user's stored OAuth token.
type GmailSender struct {
	oauth  *oauth2.Config
	tokens TokenStore
}

// NewGmailSender creates a GmailSender.
func NewGmailSender(cfg Config, tokens TokenStore) (*GmailSender, error) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, errors.New("mailer: google oauth client credentials are required")
	}
	if tokens == nil {
		return nil, errors.New("mailer: token store is required")
	}
	return &GmailSender{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.MailGoogleComScope},
		},
		tokens: tokens,
	}, nil
}

// Send builds the MIME payload and submits it as the user. The token source
// refreshes expired access tokens transparently; the refreshed token is
// written back so the next send does not pay for another refresh.
func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	tok, err := s.tokens.Token(ctx, msg.UserEmail)
	if err != nil {
		return err
	}

	source := s.oauth.TokenSource(ctx, tok)
	svc, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	raw := base64.URLEncoding.EncodeToString(buildMIME(msg))
	if _, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	if fresh, err := source.Token(); err == nil && fresh.AccessToken != tok.AccessToken {
		if err := s.tokens.Save(ctx, msg.UserEmail, fresh); err != nil {
			// A stale stored token only costs a refresh on the next send.
			return nil
		}
	}
	return nil
}
