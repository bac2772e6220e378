package entitlement

import (
	"context"
	"errors"

	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/catalog"
)

// Checker decides whether an account may perform a metered action by
// comparing the plan allowance against consumed usage.
type Checker interface {
	// Check returns nil when the action is allowed. It never mutates state;
	// the debit happens separately, after the side effect succeeded.
	Check(ctx context.Context, email string, action catalog.Action) error

	// Usage returns the consumed count and allowance for an action.
	Usage(ctx context.Context, email string, action catalog.Action) (used, allowance int64, err error)
}

type checker struct {
	accounts account.Store
	plans    catalog.Catalog
}

// NewChecker creates a Checker. Panics on nil dependencies to fail fast
// during initialization.
func NewChecker(accounts account.Store, plans catalog.Catalog) Checker {
	if accounts == nil {
		panic("entitlement: account store is required")
	}
	if plans == nil {
		panic("entitlement: plan catalog is required")
	}
	return &checker{accounts: accounts, plans: plans}
}

func (c *checker) Check(ctx context.Context, email string, action catalog.Action) error {
	used, allowance, err := c.Usage(ctx, email, action)
	if err != nil {
		return err
	}
	if allowance-used <= 0 {
		return ErrNoCreditsAvailable
	}
	return nil
}

func (c *checker) Usage(ctx context.Context, email string, action catalog.Action) (int64, int64, error) {
	acc, err := c.accounts.FindByEmail(ctx, email)
	if err != nil {
		return 0, 0, err
	}

	plan, err := c.plans.FindByName(ctx, acc.PlanName)
	if err != nil {
		// The account references a plan the catalog does not know. That is
		// a data-integrity gap on the operator side, not a user denial.
		if errors.Is(err, catalog.ErrPlanNotFound) {
			return 0, 0, errors.Join(ErrPlanNotConfigured, err)
		}
		return 0, 0, err
	}

	allowance, ok := plan.Allowance(action)
	if !ok {
		return 0, 0, ErrUnknownAction
	}

	return usedFor(acc, action), allowance, nil
}

func usedFor(acc *account.Account, action catalog.Action) int64 {
	switch action {
	case catalog.ActionSendEmail:
		return acc.EmailsUsed
	case catalog.ActionRewriteText:
		return acc.AIRewritesUsed
	default:
		return 0
	}
}
