package driving

import (
	"context"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// Jobs is the number of jobs saved to the transcript store.
	Jobs int

	// Points is the number of vector points written.
	Points int

	// IndexFailures counts jobs that were stored but could not be indexed.
	IndexFailures int
}

// Add accumulates another report into r.
func (r *IngestReport) Add(other IngestReport) {
	r.Jobs += other.Jobs
	r.Points += other.Points
	r.IndexFailures += other.IndexFailures
}

// IngestService loads transcript jobs into the store and vector index.
type IngestService interface {
	// IngestJob stores a job and indexes its segments.
	IngestJob(ctx context.Context, job *domain.JobResult) (IngestReport, error)

	// IngestFile loads a JSON file holding one job or an array of jobs.
	IngestFile(ctx context.Context, path string) (IngestReport, error)

	// Watch ingests JSON files created or modified in dir until ctx ends.
	Watch(ctx context.Context, dir string) error

	// EnsureIndex creates the vector collection when a vector index is configured.
	EnsureIndex(ctx context.Context) error
}
