package driving

import (
	"context"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// QueryService answers natural-language questions over transcripts.
type QueryService interface {
	// Ask runs the whole pipeline and returns a single answer. Missing data
	// and oversized prompts come back as answers carrying a notice; only
	// extraction and upstream failures are returned as errors.
	Ask(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error)

	// Plan runs extraction, resolution and retrieval and returns the
	// assembled plan without calling the generation model.
	Plan(ctx context.Context, req domain.QueryRequest) (*domain.QueryPlan, error)
}
