package account

import "context"

// Store defines account persistence.
//
// Update is the only mutation path for existing accounts. It implements an
// optimistic read-modify-write: mutate receives the freshly loaded account,
// and the write commits only if no concurrent update happened in between.
// On a lost race the implementation reloads and calls mutate again, so any
// precondition inside mutate is always evaluated against current state.
// An error returned by mutate aborts the update and is passed through
// unchanged.
type Store interface {
	// FindByEmail returns the account with the given email or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Create inserts a new account. Returns ErrAlreadyExists if the email
	// is taken.
	Create(ctx context.Context, acc *Account) error

	// Update applies mutate to the account atomically. Returns the state
	// that was committed, ErrNotFound if the account does not exist, or
	// ErrConcurrentUpdate if the write kept losing races.
	Update(ctx context.Context, email string, mutate func(*Account) error) (*Account, error)
}
