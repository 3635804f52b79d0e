package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/castquery/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.TranscriptStore = (*Store)(nil)

// DefaultFileName is the database file created under the data directory.
const DefaultFileName = "transcripts.db"

// Store is a SQLite-backed transcript store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at dbPath.
// If dbPath is empty, defaults to ~/.castquery/data/transcripts.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".castquery", "data", DefaultFileName)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_transcripts.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save inserts or replaces a job and all of its segments.
func (s *Store) Save(ctx context.Context, job *domain.JobResult) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("%w: job ID is required", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO jobs (id, ai_job_request_id, channel_id, channel_display_name, status,
			operation, start_at, end_at, file_path, audio_language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ai_job_request_id = excluded.ai_job_request_id,
			channel_id = excluded.channel_id,
			channel_display_name = excluded.channel_display_name,
			status = excluded.status,
			operation = excluded.operation,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			file_path = excluded.file_path,
			audio_language = excluded.audio_language
	`, job.ID, job.AIJobRequestID, job.ChannelID, job.ChannelDisplayName, job.Status,
		job.Operation, toNanos(job.Start), toNanos(job.End), job.FilePath, job.AudioLanguage)
	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE job_id = ?", job.ID); err != nil {
		return fmt.Errorf("clearing segments: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (job_id, position, text, start_seconds, end_seconds,
			start_time, end_time, keyword)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, seg := range job.Segments {
		if _, err := stmt.ExecContext(ctx, job.ID, i, seg.Text, seg.StartInSeconds, seg.EndInSeconds,
			toNanos(seg.StartTime), toNanos(seg.EndTime), seg.Keyword); err != nil {
			return fmt.Errorf("saving segment %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const jobColumns = `id, ai_job_request_id, channel_id, channel_display_name, status,
	operation, start_at, end_at, file_path, audio_language`

// FindByFilter runs a structural query. Job predicates are evaluated in SQL;
// keyword narrowing runs over the loaded segments.
func (s *Store) FindByFilter(ctx context.Context, filter domain.RetrievalFilter) ([]domain.JobResult, error) {
	var (
		where []string
		args  []any
	)
	if filter.Window != nil {
		where = append(where, "end_at >= ?", "start_at <= ?")
		args = append(args, toNanos(filter.Window.Start), toNanos(filter.Window.End))
	}
	if filter.OperationTag != "" {
		where = append(where, "operation = ?")
		args = append(args, filter.OperationTag)
	}
	if filter.AIJobRequestID != "" {
		where = append(where, "ai_job_request_id = ?")
		args = append(args, filter.AIJobRequestID)
	}
	if len(filter.ChannelIDs) > 0 {
		where = append(where, "channel_id IN ("+placeholders(len(filter.ChannelIDs))+")")
		for _, id := range filter.ChannelIDs {
			args = append(args, id)
		}
	}

	query := "SELECT " + jobColumns + " FROM jobs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch filter.Sort {
	case domain.SortAscending:
		query += " ORDER BY start_at ASC, rowid ASC"
	case domain.SortDescending:
		query += " ORDER BY start_at DESC, rowid ASC"
	default:
		query += " ORDER BY rowid"
	}

	jobs, err := s.queryJobs(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.loadSegments(ctx, jobs); err != nil {
		return nil, err
	}

	// Job predicates already hold; this only narrows segments by keyword.
	return domain.RetrievalFilter{Keywords: filter.Keywords}.Apply(jobs), nil
}

// FindByIDs fetches jobs by ID in store order. Missing IDs are skipped.
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]domain.JobResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := "SELECT " + jobColumns + " FROM jobs WHERE id IN (" + placeholders(len(ids)) + ") ORDER BY rowid"

	jobs, err := s.queryJobs(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.loadSegments(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Count returns the number of stored jobs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting jobs: %w", err)
	}
	return n, nil
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]domain.JobResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.JobResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}

// loadSegments fills in the segments of each job, in recording order.
func (s *Store) loadSegments(ctx context.Context, jobs []domain.JobResult) error {
	if len(jobs) == 0 {
		return nil
	}

	index := make(map[string]int, len(jobs))
	args := make([]any, len(jobs))
	for i, job := range jobs {
		index[job.ID] = i
		args[i] = job.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, text, start_seconds, end_seconds, start_time, end_time, keyword
		FROM segments WHERE job_id IN (`+placeholders(len(jobs))+`)
		ORDER BY job_id, position
	`, args...)
	if err != nil {
		return fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			jobID      string
			seg        domain.TranscriptSegment
			start, end int64
		)
		if err := rows.Scan(&jobID, &seg.Text, &seg.StartInSeconds, &seg.EndInSeconds,
			&start, &end, &seg.Keyword); err != nil {
			return fmt.Errorf("scanning segment: %w", err)
		}
		seg.StartTime = fromNanos(start)
		seg.EndTime = fromNanos(end)

		i, ok := index[jobID]
		if !ok {
			continue
		}
		jobs[i].Segments = append(jobs[i].Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating segments: %w", err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*domain.JobResult, error) {
	var (
		job        domain.JobResult
		start, end int64
	)
	err := row.Scan(&job.ID, &job.AIJobRequestID, &job.ChannelID, &job.ChannelDisplayName,
		&job.Status, &job.Operation, &start, &end, &job.FilePath, &job.AudioLanguage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	job.Start = fromNanos(start)
	job.End = fromNanos(end)
	return &job, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
