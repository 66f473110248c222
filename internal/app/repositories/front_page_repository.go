package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
	"github.com/yigit/canvasmirror/internal/pkg/dberrors"
)

// FrontPageRepository handles database operations for mirrored front pages.
// A course has at most one front page, so course_id is the key.
type FrontPageRepository struct {
	db *pgxpool.Pool
}

// NewFrontPageRepository creates a new front page repository
func NewFrontPageRepository(db *pgxpool.Pool) *FrontPageRepository {
	return &FrontPageRepository{
		db: db,
	}
}

// Upsert inserts the front page or overwrites the existing row.
func (r *FrontPageRepository) Upsert(ctx context.Context, page *models.FrontPage) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	page.ContentHash = page.Fingerprint()

	query := `
		INSERT INTO front_pages (
			course_id, course_name, title, body, updated_at,
			content_hash, last_synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (course_id) DO UPDATE SET
			course_name = EXCLUDED.course_name,
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at,
			content_hash = EXCLUDED.content_hash,
			last_synced_at = NOW()
		RETURNING last_synced_at
	`

	err := r.db.QueryRow(ctx, query,
		page.CourseID,
		page.CourseName,
		page.Title,
		page.Body,
		page.UpdatedAt,
		page.ContentHash,
	).Scan(&page.LastSyncedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: front page references missing course %d (%s)", apperrors.ErrPersistenceFailure, page.CourseID, dberrors.ConstraintName(err))
		}
		return fmt.Errorf("%w: failed to upsert front page for course %d: %v", apperrors.ErrPersistenceFailure, page.CourseID, err)
	}

	return nil
}

// GetByCourseID retrieves a course's mirrored front page
func (r *FrontPageRepository) GetByCourseID(ctx context.Context, courseID int64) (*models.FrontPage, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT course_id, course_name, title, body, updated_at,
			content_hash, last_synced_at
		FROM front_pages
		WHERE course_id = $1
	`

	var page models.FrontPage
	err := r.db.QueryRow(ctx, query, courseID).Scan(
		&page.CourseID,
		&page.CourseName,
		&page.Title,
		&page.Body,
		&page.UpdatedAt,
		&page.ContentHash,
		&page.LastSyncedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error retrieving front page: %w", err)
	}

	return &page, nil
}
