package driven

import (
	"time"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// PlanCache holds assembled plans keyed by query fingerprint.
// Implementations must be safe for concurrent use. Expired entries are
// evicted when looked up; competing writers for one key resolve as last
// write wins.
type PlanCache interface {
	// Get returns the live plan for fingerprint at now.
	Get(fingerprint string, now time.Time) (*domain.QueryPlan, bool)

	// Put stores the plan under its fingerprint.
	Put(plan *domain.QueryPlan)

	// Len returns the number of entries, expired or not.
	Len() int
}
