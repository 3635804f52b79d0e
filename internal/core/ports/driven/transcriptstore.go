package driven

import (
	"context"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// TranscriptStore persists job results and serves structural retrieval.
//
// Every implementation applies the same predicates:
//   - job.End >= window.Start and job.Start <= window.End
//   - job.Operation == filter.OperationTag when the tag is set
//   - channel membership and request ID equality when set
//   - segments filtered by keyword; jobs left without segments are dropped
//   - ordered by job start when a sort direction is set, else store order
type TranscriptStore interface {
	// FindByFilter runs a structural query.
	FindByFilter(ctx context.Context, filter domain.RetrievalFilter) ([]domain.JobResult, error)

	// FindByIDs fetches jobs by ID. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]domain.JobResult, error)

	// Save inserts or replaces a job.
	Save(ctx context.Context, job *domain.JobResult) error

	// Close releases resources.
	Close() error
}
