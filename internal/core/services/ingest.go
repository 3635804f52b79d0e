package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/core/ports/driving"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// jobFileNamespace seeds the IDs of file jobs that carry none.
var jobFileNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("castquery:job-file"))

// IngestService saves transcript jobs to the store and indexes their
// segments in the vector index.
type IngestService struct {
	store    driven.TranscriptStore
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	watcher  driven.FileWatcher
	limiter  *rate.Limiter
}

// NewIngestService creates an ingest service.
// The index, embedder and watcher parameters are optional (can be nil).
// A positive ratePerSecond throttles how fast jobs are ingested.
func NewIngestService(
	store driven.TranscriptStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	watcher driven.FileWatcher,
	ratePerSecond float64,
) *IngestService {
	s := &IngestService{
		store:    store,
		index:    index,
		embedder: embedder,
		watcher:  watcher,
	}
	if ratePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return s
}

// EnsureIndex creates the vector collection sized for the embedding model.
func (s *IngestService) EnsureIndex(ctx context.Context) error {
	if s.index == nil || s.embedder == nil {
		logger.Debug("No vector index configured, skipping collection setup")
		return nil
	}
	if err := s.index.EnsureCollection(ctx, s.embedder.Dimensions()); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	return nil
}

// IngestJob saves job then indexes it. A store failure aborts the job;
// an index failure is logged and counted.
func (s *IngestService) IngestJob(ctx context.Context, job *domain.JobResult) (driving.IngestReport, error) {
	var report driving.IngestReport
	if job == nil {
		return report, fmt.Errorf("%w: nil job", domain.ErrInvalidInput)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("ingest throttle: %w", err)
		}
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Operation == "" {
		job.Operation = domain.OperationTranscription
	}
	if job.End.Before(job.Start) {
		return report, fmt.Errorf("%w: job %s ends before it starts", domain.ErrInvalidInput, job.ID)
	}

	if err := s.store.Save(ctx, job); err != nil {
		return report, fmt.Errorf("save job %s: %w", job.ID, err)
	}
	report.Jobs = 1
	logger.Debug("Saved job %s (%d segments)", job.ID, len(job.Segments))

	if s.index == nil {
		return report, nil
	}

	points, err := s.index.Upsert(ctx, *job)
	if err != nil {
		logger.Warn("Index job %s: %v", job.ID, err)
		report.IndexFailures = 1
		return report, nil
	}
	report.Points = points
	return report, nil
}

// IngestFile loads a JSON file holding one job or an array of jobs.
// Jobs are ingested in file order; the first store failure stops the file.
// Jobs without an ID get one derived from the file path and position, so
// re-ingesting an edited file replaces its jobs instead of adding copies.
func (s *IngestService) IngestFile(ctx context.Context, path string) (driving.IngestReport, error) {
	var report driving.IngestReport

	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("read %s: %w", path, err)
	}

	jobs, err := decodeJobs(data)
	if err != nil {
		return report, fmt.Errorf("decode %s: %w", path, err)
	}

	logger.Info("Ingesting %d jobs from %s", len(jobs), path)
	for i := range jobs {
		if jobs[i].ID == "" {
			jobs[i].ID = fileJobID(path, i)
		}
		r, err := s.IngestJob(ctx, &jobs[i])
		report.Add(r)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// Watch ingests .json files created or modified in dir until ctx ends.
// Failures on individual files are logged and do not stop the watch.
func (s *IngestService) Watch(ctx context.Context, dir string) error {
	if s.watcher == nil {
		return errors.New("watch: no file watcher configured")
	}

	events, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for transcript files", dir)

	for ev := range events {
		if ev.Operation == driven.FileDeleted || !isJobFile(ev.Path) {
			continue
		}
		report, err := s.IngestFile(ctx, ev.Path)
		if err != nil {
			logger.Warn("Ingest %s: %v", ev.Path, err)
			continue
		}
		logger.Info("Ingested %s: %d jobs, %d points, %d index failures",
			ev.Path, report.Jobs, report.Points, report.IndexFailures)
	}
	return nil
}

// fileJobID is stable for a given file and position.
func fileJobID(path string, position int) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(jobFileNamespace, []byte(path+"#"+strconv.Itoa(position))).String()
}

func isJobFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// decodeJobs accepts a single job object or an array of jobs.
func decodeJobs(data []byte) ([]domain.JobResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}

	if trimmed[0] == '[' {
		var jobs []domain.JobResult
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return nil, err
		}
		return jobs, nil
	}

	var job domain.JobResult
	if err := json.Unmarshal(trimmed, &job); err != nil {
		return nil, err
	}
	return []domain.JobResult{job}, nil
}
