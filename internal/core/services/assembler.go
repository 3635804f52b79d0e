package services

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

const timecodeLayout = "15:04:05"

// AssembleOptions controls how transcript lines are rendered.
type AssembleOptions struct {
	// TimeCodes prefixes each line with its segment's wall-clock range.
	TimeCodes bool

	// Degraded marks the plan as built from a structural fallback.
	Degraded bool
}

// PlanAssembler flattens retrieved documents into a QueryPlan.
type PlanAssembler struct {
	now func() time.Time
	ttl time.Duration
}

// NewPlanAssembler creates an assembler. A nil clock uses time.Now and a
// non-positive ttl uses domain.DefaultPlanTTL.
func NewPlanAssembler(now func() time.Time, ttl time.Duration) *PlanAssembler {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = domain.DefaultPlanTTL
	}
	return &PlanAssembler{now: now, ttl: ttl}
}

// Assemble builds a plan from docs in document order then segment order.
// Blank segments are skipped and repeated lines keep their first position.
func (a *PlanAssembler) Assemble(
	ictx domain.QueryIntentContext,
	window *domain.TimeWindow,
	docs []domain.JobResult,
	opts AssembleOptions,
) *domain.QueryPlan {
	var lines []string
	for _, doc := range docs {
		for _, s := range doc.Segments {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			if opts.TimeCodes {
				text = timecodedLine(s, text)
			}
			lines = append(lines, text)
		}
	}

	return &domain.QueryPlan{
		ID:              uuid.NewString(),
		Fingerprint:     Fingerprint(ictx.OriginalQuery),
		UserQuery:       ictx.OriginalQuery,
		Intents:         ictx.Intents,
		Entities:        ictx.Entities,
		Window:          window,
		TranscriptLines: lo.Uniq(lines),
		CreatedAt:       a.now().UTC(),
		TTL:             a.ttl,
		Degraded:        opts.Degraded,
	}
}

func timecodedLine(s domain.TranscriptSegment, text string) string {
	return s.StartTime.UTC().Format(timecodeLayout) + " - " +
		s.EndTime.UTC().Format(timecodeLayout) + "\n" + text
}

// Fingerprint is the cache key of a query: base64 of its SHA-256 digest.
func Fingerprint(query string) string {
	sum := sha256.Sum256([]byte(query))
	return base64.StdEncoding.EncodeToString(sum[:])
}
