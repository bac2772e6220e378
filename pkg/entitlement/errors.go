package entitlement

import "errors"

var (
	// ErrNoCreditsAvailable means the plan allowance for the action is
	// fully consumed in the current billing cycle.
	ErrNoCreditsAvailable = errors.New("no credits available")

	// ErrPlanNotConfigured means the account's plan has no catalog entry.
	// Operator error, not a user denial.
	ErrPlanNotConfigured = errors.New("account plan is not configured in the catalog")

	ErrUnknownAction = errors.New("unknown metered action")
)
