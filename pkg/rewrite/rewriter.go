package rewrite

import "context"

// Rewriter produces an AI rewrite of the given text. It is a metered
// external side effect: callers check entitlement first and debit the
// ledger only after a successful rewrite.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}
