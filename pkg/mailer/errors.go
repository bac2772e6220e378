package mailer

import "errors"

var (
	// ErrNotAuthorized means no OAuth token is stored for the sending
	// user; the account has not completed the Gmail authorization flow.
	ErrNotAuthorized = errors.New("gmail channel not authorized for user")

	ErrSendFailed = errors.New("failed to send email")
)
