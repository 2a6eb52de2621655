package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotlake/internal/models"
	"github.com/desertthunder/spotlake/internal/shared"
)

const jobRunColumns = `
	id, sequence, job_name, status, objects_read, albums_written,
	artists_written, songs_written, objects_archived, error_message,
	started_at, completed_at
`

var _ models.Repository[*models.JobRun] = (*JobRunRepository)(nil)

// JobRunRepository implements models.Repository[*models.JobRun].
type JobRunRepository struct {
	db *sql.DB
}

// NewJobRunRepository creates a new JobRunRepository with the given database connection
func NewJobRunRepository(db *sql.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

// Create inserts a new run with a generated sequence. An empty ID is replaced with a new UUID.
func (r *JobRunRepository) Create(ctx context.Context, run *models.JobRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "job_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	run.Sequence = sequence

	query := `INSERT INTO job_runs (` + jobRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.Sequence,
		run.JobName,
		run.Status,
		run.ObjectsRead,
		run.AlbumsWritten,
		run.ArtistsWritten,
		run.SongsWritten,
		run.ObjectsArchived,
		nullString(run.ErrorMessage),
		run.StartedAt.Unix(),
		unixOrNil(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID.
func (r *JobRunRepository) Get(ctx context.Context, id string) (*models.JobRun, error) {
	query := `SELECT ` + jobRunColumns + ` FROM job_runs WHERE id = ?`

	run, err := scanJobRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job run: %w", err)
	}
	return run, nil
}

// Update writes the status, counts and completion fields of an existing run.
func (r *JobRunRepository) Update(ctx context.Context, run *models.JobRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE job_runs
		SET status = ?, objects_read = ?, albums_written = ?, artists_written = ?,
			songs_written = ?, objects_archived = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.ObjectsRead,
		run.AlbumsWritten,
		run.ArtistsWritten,
		run.SongsWritten,
		run.ObjectsArchived,
		nullString(run.ErrorMessage),
		unixOrNil(run.CompletedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first.
//
// Recognized criteria: job_name (string), status (string or models.RunStatus), limit (int).
func (r *JobRunRepository) List(ctx context.Context, criteria map[string]any) ([]*models.JobRun, error) {
	query := `SELECT ` + jobRunColumns + ` FROM job_runs WHERE 1 = 1`
	args := []any{}

	if jobName, ok := criteria["job_name"].(string); ok && jobName != "" {
		query += " AND job_name = ?"
		args = append(args, jobName)
	}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.RunStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query job runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.JobRun{}
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanJobRun scans a single row from either [sql.Row] or [sql.Rows].
func scanJobRun(s scanner) (*models.JobRun, error) {
	var (
		run          models.JobRun
		status       string
		errorMessage sql.NullString
		startedAt    int64
		completedAt  sql.NullInt64
	)

	err := s.Scan(
		&run.ID, &run.Sequence, &run.JobName, &status, &run.ObjectsRead,
		&run.AlbumsWritten, &run.ArtistsWritten, &run.SongsWritten,
		&run.ObjectsArchived, &errorMessage, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)
	run.ErrorMessage = errorMessage.String
	run.StartedAt = time.Unix(startedAt, 0).UTC()
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0).UTC()
		run.CompletedAt = &t
	}

	return &run, nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
