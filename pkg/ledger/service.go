package ledger

import (
	"context"
	"errors"

	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/catalog"
)

// Ledger debits consumed-usage counters after a metered side effect
// succeeded.
type Ledger interface {
	// Debit increments the consumed counter for the action and returns the
	// remaining allowance. Returns ErrInsufficientCredit when the allowance
	// is already exhausted at commit time, which happens when a concurrent
	// request won the last credit between the entitlement check and the
	// debit.
	Debit(ctx context.Context, email string, action catalog.Action) (remaining int64, err error)
}

type ledger struct {
	accounts account.Store
	plans    catalog.Catalog
}

// New creates a Ledger. Panics on nil dependencies to fail fast during
// initialization.
func New(accounts account.Store, plans catalog.Catalog) Ledger {
	if accounts == nil {
		panic("ledger: account store is required")
	}
	if plans == nil {
		panic("ledger: plan catalog is required")
	}
	return &ledger{accounts: accounts, plans: plans}
}

// Debit runs through the store's optimistic update, so the precondition is
// re-evaluated against fresh state on every attempt. Two concurrent debits
// for the last credit cannot both commit: the loser reloads, sees the
// counter at the allowance, and fails with ErrInsufficientCredit.
func (l *ledger) Debit(ctx context.Context, email string, action catalog.Action) (int64, error) {
	var remaining int64
	_, err := l.accounts.Update(ctx, email, func(acc *account.Account) error {
		plan, err := l.plans.FindByName(ctx, acc.PlanName)
		if err != nil {
			return err
		}
		allowance, ok := plan.Allowance(action)
		if !ok {
			return ErrUnknownAction
		}

		switch action {
		case catalog.ActionSendEmail:
			if acc.EmailsUsed >= allowance {
				return ErrInsufficientCredit
			}
			acc.EmailsUsed++
			remaining = allowance - acc.EmailsUsed
		case catalog.ActionRewriteText:
			if acc.AIRewritesUsed >= allowance {
				return ErrInsufficientCredit
			}
			acc.AIRewritesUsed++
			remaining = allowance - acc.AIRewritesUsed
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, account.ErrConcurrentUpdate) {
			// Contention exhausted the retry budget. Denied but retryable.
			return 0, errors.Join(ErrInsufficientCredit, err)
		}
		return 0, err
	}
	return remaining, nil
}
