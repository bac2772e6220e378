package entitlement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maileazy/mailhub/pkg/account"
	"github.com/maileazy/mailhub/pkg/catalog"
	"github.com/maileazy/mailhub/pkg/entitlement"
)

func newFixture(t *testing.T) (account.Store, entitlement.Checker) {
	t.Helper()
	accounts := account.NewMemoryStore()
	plans := catalog.NewMemoryCatalog(
		catalog.Plan{Name: "welcome", EmailsPerMonth: 1, AIRewritesPerMonth: 5, Ordinal: 1},
		catalog.Plan{Name: "pro", EmailsPerMonth: 100, AIRewritesPerMonth: 25, Ordinal: 2},
	)
	return accounts, entitlement.NewChecker(accounts, plans)
}

func TestChecker_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("allows action with remaining allowance", func(t *testing.T) {
		accounts, checker := newFixture(t)
		require.NoError(t, accounts.Create(ctx, account.New("alice@example.com", "Alice", "", "")))

		assert.NoError(t, checker.Check(ctx, "alice@example.com", catalog.ActionSendEmail))
	})

	t.Run("denies when allowance is fully consumed", func(t *testing.T) {
		accounts, checker := newFixture(t)
		acc := account.New("alice@example.com", "Alice", "", "")
		acc.AIRewritesUsed = 5
		require.NoError(t, accounts.Create(ctx, acc))

		err := checker.Check(ctx, "alice@example.com", catalog.ActionRewriteText)
		assert.ErrorIs(t, err, entitlement.ErrNoCreditsAvailable)
	})

	t.Run("denies when consumption exceeds allowance", func(t *testing.T) {
		accounts, checker := newFixture(t)
		acc := account.New("alice@example.com", "Alice", "", "")
		acc.EmailsUsed = 3 // above the welcome allowance of 1
		require.NoError(t, accounts.Create(ctx, acc))

		err := checker.Check(ctx, "alice@example.com", catalog.ActionSendEmail)
		assert.ErrorIs(t, err, entitlement.ErrNoCreditsAvailable)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, checker := newFixture(t)

		err := checker.Check(ctx, "ghost@example.com", catalog.ActionSendEmail)
		assert.ErrorIs(t, err, account.ErrNotFound)
	})

	t.Run("plan missing from catalog is an integrity error", func(t *testing.T) {
		accounts, checker := newFixture(t)
		acc := account.New("alice@example.com", "Alice", "", "")
		acc.PlanName = "legacy-gold"
		require.NoError(t, accounts.Create(ctx, acc))

		err := checker.Check(ctx, "alice@example.com", catalog.ActionSendEmail)
		assert.ErrorIs(t, err, entitlement.ErrPlanNotConfigured)
		assert.NotErrorIs(t, err, entitlement.ErrNoCreditsAvailable)
	})

	t.Run("unknown action kind", func(t *testing.T) {
		accounts, checker := newFixture(t)
		require.NoError(t, accounts.Create(ctx, account.New("alice@example.com", "Alice", "", "")))

		err := checker.Check(ctx, "alice@example.com", catalog.Action("teleport"))
		assert.ErrorIs(t, err, entitlement.ErrUnknownAction)
	})
}

func TestChecker_Usage(t *testing.T) {
	ctx := context.Background()
	accounts, checker := newFixture(t)

	acc := account.New("alice@example.com", "Alice", "", "")
	acc.PlanName = "pro"
	acc.EmailsUsed = 42
	require.NoError(t, accounts.Create(ctx, acc))

	used, allowance, err := checker.Usage(ctx, "alice@example.com", catalog.ActionSendEmail)
	require.NoError(t, err)
	assert.EqualValues(t, 42, used)
	assert.EqualValues(t, 100, allowance)
}
