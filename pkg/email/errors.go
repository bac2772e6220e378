package email

import "errors"

var (
	ErrFailedToSend  = errors.New("failed to send transactional email")
	ErrInvalidConfig = errors.New("invalid email configuration")
	ErrInvalidParams = errors.New("invalid email parameters")
)
