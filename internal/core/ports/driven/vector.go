package driven

import (
	"context"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// VectorIndex stores embedded transcript chunks and answers similarity
// searches constrained by a time window.
type VectorIndex interface {
	// EnsureCollection creates the backing collection if it is missing.
	EnsureCollection(ctx context.Context, vectorSize int) error

	// Upsert embeds the job's segments (paired) and writes the points.
	// Returns the number of points written.
	Upsert(ctx context.Context, job domain.JobResult) (int, error)

	// Search returns document IDs ranked by similarity, best first.
	// IDs may repeat when several points of one document match.
	Search(ctx context.Context, query []float32, filter domain.RetrievalFilter, topK int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// DocumentID is the transcript store ID of the matched job.
	DocumentID string

	// Score is the similarity score reported by the index.
	Score float64
}
