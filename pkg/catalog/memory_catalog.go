package catalog

import (
	"context"
	"slices"
	"sync"
)

// memoryCatalog is an in-memory Catalog for tests and local development.
type memoryCatalog struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemoryCatalog returns a Catalog holding a copy of the given plans.
func NewMemoryCatalog(plans ...Plan) Catalog {
	byName := make(map[string]Plan, len(plans))
	for _, p := range plans {
		byName[p.Name] = p
	}
	return &memoryCatalog{plans: byName}
}

func (c *memoryCatalog) FindByName(ctx context.Context, name string) (*Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	plan, ok := c.plans[name]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return &plan, nil
}

func (c *memoryCatalog) List(ctx context.Context) ([]Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	plans := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		plans = append(plans, p)
	}
	slices.SortFunc(plans, func(a, b Plan) int { return a.Ordinal - b.Ordinal })
	return plans, nil
}
