// Package memory provides an in-process plan cache.
package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
)

// Ensure PlanCache implements the interface.
var _ driven.PlanCache = (*PlanCache)(nil)

// PlanCache is a mutex-guarded map of plans keyed by query fingerprint.
// Expired entries are evicted when looked up.
type PlanCache struct {
	mu    sync.Mutex
	plans map[string]*domain.QueryPlan
}

// NewPlanCache creates an empty cache.
func NewPlanCache() *PlanCache {
	return &PlanCache{plans: make(map[string]*domain.QueryPlan)}
}

// Get returns the plan stored under fingerprint if it is still live at now.
func (c *PlanCache) Get(fingerprint string, now time.Time) (*domain.QueryPlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	plan, ok := c.plans[fingerprint]
	if !ok {
		return nil, false
	}
	if plan.Expired(now) {
		delete(c.plans, fingerprint)
		return nil, false
	}
	return plan, true
}

// Put stores plan under its fingerprint, replacing any previous entry.
func (c *PlanCache) Put(plan *domain.QueryPlan) {
	if plan == nil || plan.Fingerprint == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[plan.Fingerprint] = plan
}

// Len returns the number of entries, expired or not.
func (c *PlanCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plans)
}
