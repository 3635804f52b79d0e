package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
)

// Ensure TranscriptStore implements the interface.
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore is an in-memory implementation of driven.TranscriptStore.
// Store order is insertion order; replacing a job keeps its position.
type TranscriptStore struct {
	mu    sync.RWMutex
	jobs  map[string]domain.JobResult
	order []string
}

// NewTranscriptStore creates a new in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{
		jobs: make(map[string]domain.JobResult),
	}
}

// Save inserts or replaces a job.
func (s *TranscriptStore) Save(_ context.Context, job *domain.JobResult) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("%w: job ID is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		s.order = append(s.order, job.ID)
	}
	s.jobs[job.ID] = cloneJob(*job)
	return nil
}

// FindByFilter runs a structural query over every stored job.
func (s *TranscriptStore) FindByFilter(_ context.Context, filter domain.RetrievalFilter) ([]domain.JobResult, error) {
	s.mu.RLock()
	all := make([]domain.JobResult, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, cloneJob(s.jobs[id]))
	}
	s.mu.RUnlock()

	matched := filter.Apply(all)
	domain.SortJobs(matched, filter.Sort)
	return matched, nil
}

// FindByIDs fetches jobs by ID in store order. Missing IDs are skipped.
func (s *TranscriptStore) FindByIDs(_ context.Context, ids []string) ([]domain.JobResult, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.JobResult
	for _, id := range s.order {
		if want[id] {
			out = append(out, cloneJob(s.jobs[id]))
		}
	}
	return out, nil
}

// Len returns the number of stored jobs.
func (s *TranscriptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Close releases resources.
func (s *TranscriptStore) Close() error {
	return nil
}

// cloneJob copies the segment slice so callers cannot mutate stored state.
func cloneJob(job domain.JobResult) domain.JobResult {
	if job.Segments != nil {
		job.Segments = append([]domain.TranscriptSegment(nil), job.Segments...)
	}
	return job
}
