package ledger

import "errors"

var (
	// ErrInsufficientCredit means the debit precondition failed at commit
	// time. Safe to surface as a denial; the side effect for the losing
	// request was already performed, so callers must log it rather than
	// fail the response.
	ErrInsufficientCredit = errors.New("insufficient credit")

	ErrUnknownAction = errors.New("unknown metered action")
)
