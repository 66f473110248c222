package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
	"github.com/yigit/canvasmirror/internal/pkg/dberrors"
)

// QuizRepository handles database operations for mirrored quizzes
type QuizRepository struct {
	db *pgxpool.Pool
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{
		db: db,
	}
}

// Upsert inserts the quiz or overwrites the existing row.
func (r *QuizRepository) Upsert(ctx context.Context, quiz *models.Quiz) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	quiz.ContentHash = quiz.Fingerprint()

	query := `
		INSERT INTO quizzes (
			quiz_id, course_id, course_name, title, due_at,
			points_possible, html_url, content_hash, last_synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (quiz_id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			course_name = EXCLUDED.course_name,
			title = EXCLUDED.title,
			due_at = EXCLUDED.due_at,
			points_possible = EXCLUDED.points_possible,
			html_url = EXCLUDED.html_url,
			content_hash = EXCLUDED.content_hash,
			last_synced_at = NOW()
		RETURNING last_synced_at
	`

	err := r.db.QueryRow(ctx, query,
		quiz.QuizID,
		quiz.CourseID,
		quiz.CourseName,
		quiz.Title,
		quiz.DueAt,
		quiz.PointsPossible,
		quiz.HTMLURL,
		quiz.ContentHash,
	).Scan(&quiz.LastSyncedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: quiz %d references missing course %d (%s)", apperrors.ErrPersistenceFailure, quiz.QuizID, quiz.CourseID, dberrors.ConstraintName(err))
		}
		return fmt.Errorf("%w: failed to upsert quiz %d: %v", apperrors.ErrPersistenceFailure, quiz.QuizID, err)
	}

	return nil
}
