package catalog

import "context"

// Catalog is the read-only plan lookup used by the entitlement checker,
// the credit ledger and the subscription reconciler.
type Catalog interface {
	// FindByName returns the plan with the given name or ErrPlanNotFound.
	FindByName(ctx context.Context, name string) (*Plan, error)

	// List returns all plans ordered by their display ordinal.
	List(ctx context.Context) ([]Plan, error)
}
