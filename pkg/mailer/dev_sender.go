package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender implements Sender for local development. Messages are written
// to a directory as HTML plus a JSON metadata file instead of going out
// through Gmail.
type DevSender struct {
	dir string
}

// NewDevSender creates a development sender that saves messages to disk.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

type devMessageMeta struct {
	Timestamp string `json:"timestamp"`
	UserEmail string `json:"user_email"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HasFile   bool   `json:"has_attachment"`
}

func (d *DevSender) Send(ctx context.Context, msg Message) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	now := time.Now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(msg.Subject))

	if err := os.WriteFile(filepath.Join(d.dir, base+".html"), []byte(msg.HTMLBody), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	meta, err := json.MarshalIndent(devMessageMeta{
		Timestamp: now.Format(time.RFC3339),
		UserEmail: msg.UserEmail,
		To:        msg.To,
		Subject:   msg.Subject,
		HasFile:   msg.Attachment != nil,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "message"
	}
	return strings.ToLower(s)
}
