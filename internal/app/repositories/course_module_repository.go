package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
	"github.com/yigit/canvasmirror/internal/pkg/dberrors"
)

// CourseModuleRepository handles database operations for mirrored course modules
type CourseModuleRepository struct {
	db *pgxpool.Pool
}

// NewCourseModuleRepository creates a new course module repository
func NewCourseModuleRepository(db *pgxpool.Pool) *CourseModuleRepository {
	return &CourseModuleRepository{
		db: db,
	}
}

// Upsert inserts the module or overwrites the existing row.
func (r *CourseModuleRepository) Upsert(ctx context.Context, module *models.CourseModule) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	module.ContentHash = module.Fingerprint()

	query := `
		INSERT INTO course_modules (
			module_id, course_id, course_name, name, position,
			items_count, content_hash, last_synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (module_id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			course_name = EXCLUDED.course_name,
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			items_count = EXCLUDED.items_count,
			content_hash = EXCLUDED.content_hash,
			last_synced_at = NOW()
		RETURNING last_synced_at
	`

	err := r.db.QueryRow(ctx, query,
		module.ModuleID,
		module.CourseID,
		module.CourseName,
		module.Name,
		module.Position,
		module.ItemsCount,
		module.ContentHash,
	).Scan(&module.LastSyncedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: module %d references missing course %d (%s)", apperrors.ErrPersistenceFailure, module.ModuleID, module.CourseID, dberrors.ConstraintName(err))
		}
		return fmt.Errorf("%w: failed to upsert module %d: %v", apperrors.ErrPersistenceFailure, module.ModuleID, err)
	}

	return nil
}
