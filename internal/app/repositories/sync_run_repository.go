package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
)

// SyncRunRepository handles the audit trail of orchestrator runs
type SyncRunRepository struct {
	db *pgxpool.Pool
}

// NewSyncRunRepository creates a new sync run repository
func NewSyncRunRepository(db *pgxpool.Pool) *SyncRunRepository {
	return &SyncRunRepository{
		db: db,
	}
}

// Create inserts a new run in the running state
func (r *SyncRunRepository) Create(ctx context.Context, run *models.SyncRun) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO sync_runs (id, started_at, status)
		VALUES ($1, NOW(), $2)
		RETURNING started_at
	`

	err := r.db.QueryRow(ctx, query, run.ID, run.Status).Scan(&run.StartedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create sync run: %v", apperrors.ErrPersistenceFailure, err)
	}

	return nil
}

// Finalize records the outcome of a finished run
func (r *SyncRunRepository) Finalize(ctx context.Context, run *models.SyncRun) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE sync_runs SET
			finished_at = NOW(),
			status = $2,
			courses = $3,
			assignments = $4,
			announcements = $5,
			front_pages = $6,
			quizzes = $7,
			modules = $8,
			errors = $9
		WHERE id = $1
		RETURNING finished_at
	`

	err := r.db.QueryRow(ctx, query,
		run.ID,
		run.Status,
		run.Courses,
		run.Assignments,
		run.Announcements,
		run.FrontPages,
		run.Quizzes,
		run.Modules,
		run.Errors,
	).Scan(&run.FinishedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to finalize sync run %s: %v", apperrors.ErrPersistenceFailure, run.ID, err)
	}

	return nil
}

// Latest returns the most recently started run, or ErrResourceNotFound when
// no run has happened yet.
func (r *SyncRunRepository) Latest(ctx context.Context) (*models.SyncRun, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, started_at, finished_at, status, courses, assignments,
			announcements, front_pages, quizzes, modules, errors
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run models.SyncRun
	err := r.db.QueryRow(ctx, query).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Status,
		&run.Courses,
		&run.Assignments,
		&run.Announcements,
		&run.FrontPages,
		&run.Quizzes,
		&run.Modules,
		&run.Errors,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving latest sync run: %w", err)
	}

	return &run, nil
}
