package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
)

// CourseRepository handles database operations for mirrored courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

// Upsert inserts the course or overwrites the existing row. The content
// hash is recomputed from the record and last_synced_at always moves
// forward, whether or not anything changed.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	course.ContentHash = course.Fingerprint()

	query := `
		INSERT INTO courses (course_id, course_code, course_name, content_hash, last_synced_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (course_id) DO UPDATE SET
			course_code = EXCLUDED.course_code,
			course_name = EXCLUDED.course_name,
			content_hash = EXCLUDED.content_hash,
			last_synced_at = NOW()
		RETURNING last_synced_at
	`

	err := r.db.QueryRow(ctx, query,
		course.CourseID,
		course.CourseCode,
		course.CourseName,
		course.ContentHash,
	).Scan(&course.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert course %d: %v", apperrors.ErrPersistenceFailure, course.CourseID, err)
	}

	return nil
}

// GetByID retrieves a mirrored course by its Canvas id
func (r *CourseRepository) GetByID(ctx context.Context, courseID int64) (*models.Course, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT course_id, course_code, course_name, content_hash, last_synced_at
		FROM courses
		WHERE course_id = $1
	`

	var course models.Course
	err := r.db.QueryRow(ctx, query, courseID).Scan(
		&course.CourseID,
		&course.CourseCode,
		&course.CourseName,
		&course.ContentHash,
		&course.LastSyncedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	return &course, nil
}
