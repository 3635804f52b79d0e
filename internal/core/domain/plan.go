package domain

import "time"

// DefaultPlanTTL is how long a cached plan may be served.
const DefaultPlanTTL = 10 * time.Minute

// QueryPlan is the assembled slice of transcript content for one query.
type QueryPlan struct {
	// ID uniquely identifies this plan instance.
	ID string `json:"id"`

	// Fingerprint is the hash of the original query, used as cache key.
	Fingerprint string `json:"fingerprint"`

	// UserQuery is the original query text.
	UserQuery string `json:"userQuery"`

	// Intents are the extracted intents in extraction order.
	Intents []string `json:"intents"`

	// Entities are the extracted named entities.
	Entities []Entity `json:"entities"`

	// Window is the resolved retrieval window. Nil is unbounded.
	Window *TimeWindow `json:"window,omitempty"`

	// TranscriptLines are the flattened, deduplicated transcript lines.
	TranscriptLines []string `json:"transcriptLines"`

	// CreatedAt is when the plan was assembled.
	CreatedAt time.Time `json:"createdAt"`

	// TTL bounds how long the plan may be served from cache.
	TTL time.Duration `json:"ttl"`

	// Degraded is true when semantic retrieval fell back to structural.
	Degraded bool `json:"degraded"`
}

// Expired reports whether the plan has outlived its TTL at now.
func (p *QueryPlan) Expired(now time.Time) bool {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return now.Sub(p.CreatedAt) > ttl
}

// HasData reports whether the plan carries any transcript lines.
func (p *QueryPlan) HasData() bool {
	return p != nil && len(p.TranscriptLines) > 0
}
