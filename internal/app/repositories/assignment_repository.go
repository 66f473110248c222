package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
	"github.com/yigit/canvasmirror/internal/pkg/dberrors"
)

// AssignmentRepository handles database operations for mirrored assignments
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{
		db: db,
	}
}

// Upsert inserts the assignment or overwrites the existing row. Assignments
// additionally track updated_at, refreshed on every write.
func (r *AssignmentRepository) Upsert(ctx context.Context, assignment *models.Assignment) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	assignment.ContentHash = assignment.Fingerprint()

	query := `
		INSERT INTO assignments (
			assignment_id, course_id, course_name, name, description,
			due_at, points_possible, html_url, submission_status,
			content_hash, last_synced_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (assignment_id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			course_name = EXCLUDED.course_name,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			due_at = EXCLUDED.due_at,
			points_possible = EXCLUDED.points_possible,
			html_url = EXCLUDED.html_url,
			submission_status = EXCLUDED.submission_status,
			content_hash = EXCLUDED.content_hash,
			last_synced_at = NOW(),
			updated_at = NOW()
		RETURNING last_synced_at
	`

	err := r.db.QueryRow(ctx, query,
		assignment.AssignmentID,
		assignment.CourseID,
		assignment.CourseName,
		assignment.Name,
		assignment.Description,
		assignment.DueAt,
		assignment.PointsPossible,
		assignment.HTMLURL,
		assignment.SubmissionStatus,
		assignment.ContentHash,
	).Scan(&assignment.LastSyncedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: assignment %d references missing course %d (%s)", apperrors.ErrPersistenceFailure, assignment.AssignmentID, assignment.CourseID, dberrors.ConstraintName(err))
		}
		return fmt.Errorf("%w: failed to upsert assignment %d: %v", apperrors.ErrPersistenceFailure, assignment.AssignmentID, err)
	}

	return nil
}

// GetByID retrieves a mirrored assignment by its Canvas id
func (r *AssignmentRepository) GetByID(ctx context.Context, assignmentID int64) (*models.Assignment, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT assignment_id, course_id, course_name, name, description,
			due_at, points_possible, html_url, submission_status,
			content_hash, last_synced_at, updated_at
		FROM assignments
		WHERE assignment_id = $1
	`

	var assignment models.Assignment
	err := r.db.QueryRow(ctx, query, assignmentID).Scan(
		&assignment.AssignmentID,
		&assignment.CourseID,
		&assignment.CourseName,
		&assignment.Name,
		&assignment.Description,
		&assignment.DueAt,
		&assignment.PointsPossible,
		&assignment.HTMLURL,
		&assignment.SubmissionStatus,
		&assignment.ContentHash,
		&assignment.LastSyncedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}

	return &assignment, nil
}
