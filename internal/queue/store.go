package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"overlayd/internal/config"
)

// Store is the persistence contract for job records. The render engine is
// the only writer of an active job's status, progress, and message; every
// mutation goes back through Put (or SetProgress) before control returns.
type Store interface {
	Put(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context) ([]*Job, error)
	ListUnfinished(ctx context.Context) ([]*Job, error)
	SetProgress(ctx context.Context, id string, percent int) error
	Close() error
}

// DBFileName is the durable job database under the log directory.
const DBFileName = "jobs.db"

// SQLiteStore manages job persistence backed by SQLite. Transactions give
// concurrent readers a consistent view: no reader ever observes a partially
// written record, and a reload after a crash reconstructs exactly the last
// committed state.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    progress INTEGER NOT NULL DEFAULT 0,
    input_path TEXT,
    output_path TEXT,
    work_dir TEXT,
    message TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// Open initializes or connects to the job database. An existing database
// that cannot be opened or migrated is moved aside and replaced with an
// empty one so a corrupt file never blocks startup; the returned recovered
// flag reports when that happened so the caller can log it.
func Open(cfg *config.Config) (*SQLiteStore, bool, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, false, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, DBFileName)
	store, err := open(dbPath)
	if err == nil {
		return store, false, nil
	}

	// Unparseable store: preserve the old file for inspection and start empty.
	if renameErr := os.Rename(dbPath, dbPath+".corrupt"); renameErr != nil && !errors.Is(renameErr, os.ErrNotExist) {
		return nil, false, fmt.Errorf("move corrupt job database: %w (open error: %v)", renameErr, err)
	}
	store, retryErr := open(dbPath)
	if retryErr != nil {
		return nil, false, fmt.Errorf("reopen job database: %w", retryErr)
	}
	return store, true, nil
}

func open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Put inserts or replaces a job record.
func (s *SQLiteStore) Put(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if job.ID == "" {
		return errors.New("job id is empty")
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (id, status, progress, input_path, output_path, work_dir, message, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             status = excluded.status, progress = excluded.progress,
             input_path = excluded.input_path, output_path = excluded.output_path,
             work_dir = excluded.work_dir, message = excluded.message,
             updated_at = excluded.updated_at`,
		job.ID,
		job.Status,
		job.Progress,
		nullableString(job.InputPath),
		nullableString(job.OutputPath),
		nullableString(job.WorkDir),
		nullableString(job.Message),
		job.CreatedAt.Format(time.RFC3339Nano),
		job.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put job: %w", err)
	}
	return nil
}

// Get fetches a job by identifier, returning nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns all jobs ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ListUnfinished returns jobs not yet in a terminal state, ordered by creation time.
func (s *SQLiteStore) ListUnfinished(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status NOT IN (?, ?) ORDER BY created_at`,
		StatusDone,
		StatusError,
	)
	if err != nil {
		return nil, fmt.Errorf("list unfinished jobs: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

// SetProgress persists a progress update without rewriting the whole record.
// Called on every parsed transcoder line, so it stays a single UPDATE.
func (s *SQLiteStore) SetProgress(ctx context.Context, id string, percent int) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`,
		percent,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// Stats returns a count of jobs grouped by status.
func (s *SQLiteStore) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const jobColumns = "id, status, progress, input_path, output_path, work_dir, message, created_at, updated_at"

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id         string
		statusStr  string
		progress   int
		inputPath  sql.NullString
		outputPath sql.NullString
		workDir    sql.NullString
		message    sql.NullString
		createdRaw string
		updatedRaw string
	)

	if err := scanner.Scan(
		&id,
		&statusStr,
		&progress,
		&inputPath,
		&outputPath,
		&workDir,
		&message,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:         id,
		Status:     Status(statusStr),
		Progress:   progress,
		InputPath:  inputPath.String,
		OutputPath: outputPath.String,
		WorkDir:    workDir.String,
		Message:    message.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

var _ Store = (*SQLiteStore)(nil)
