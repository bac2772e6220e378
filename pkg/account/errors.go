package account

import "errors"

var (
	ErrNotFound         = errors.New("account not found")
	ErrAlreadyExists    = errors.New("account already exists")
	ErrConcurrentUpdate = errors.New("account update lost too many races")
)
