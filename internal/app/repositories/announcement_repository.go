package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
	"github.com/yigit/canvasmirror/internal/pkg/dberrors"
)

// AnnouncementRepository handles database operations for mirrored announcements
type AnnouncementRepository struct {
	db *pgxpool.Pool
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{
		db: db,
	}
}

// Upsert inserts the announcement or overwrites the existing row.
func (r *AnnouncementRepository) Upsert(ctx context.Context, announcement *models.Announcement) error {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	announcement.ContentHash = announcement.Fingerprint()

	query := `
		INSERT INTO announcements (
			announcement_id, course_id, course_name, title, message,
			posted_at, html_url, content_hash, last_synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (announcement_id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			course_name = EXCLUDED.course_name,
			title = EXCLUDED.title,
			message = EXCLUDED.message,
			posted_at = EXCLUDED.posted_at,
			html_url = EXCLUDED.html_url,
			content_hash = EXCLUDED.content_hash,
			last_synced_at = NOW()
		RETURNING last_synced_at
	`

	err := r.db.QueryRow(ctx, query,
		announcement.AnnouncementID,
		announcement.CourseID,
		announcement.CourseName,
		announcement.Title,
		announcement.Message,
		announcement.PostedAt,
		announcement.HTMLURL,
		announcement.ContentHash,
	).Scan(&announcement.LastSyncedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: announcement %d references missing course %d (%s)", apperrors.ErrPersistenceFailure, announcement.AnnouncementID, announcement.CourseID, dberrors.ConstraintName(err))
		}
		return fmt.Errorf("%w: failed to upsert announcement %d: %v", apperrors.ErrPersistenceFailure, announcement.AnnouncementID, err)
	}

	return nil
}

// GetByID retrieves a mirrored announcement by its Canvas id
func (r *AnnouncementRepository) GetByID(ctx context.Context, announcementID int64) (*models.Announcement, error) {
	ctx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT announcement_id, course_id, course_name, title, message,
			posted_at, html_url, content_hash, last_synced_at
		FROM announcements
		WHERE announcement_id = $1
	`

	var announcement models.Announcement
	err := r.db.QueryRow(ctx, query, announcementID).Scan(
		&announcement.AnnouncementID,
		&announcement.CourseID,
		&announcement.CourseName,
		&announcement.Title,
		&announcement.Message,
		&announcement.PostedAt,
		&announcement.HTMLURL,
		&announcement.ContentHash,
		&announcement.LastSyncedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error retrieving announcement: %w", err)
	}

	return &announcement, nil
}
