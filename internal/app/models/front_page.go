package models

import (
	"time"

	"github.com/yigit/canvasmirror/internal/pkg/contenthash"
)

// FrontPage represents a course's wiki front page. A course has at most one,
// so the course id is the identity.
type FrontPage struct {
	CourseID     int64      `json:"courseId" db:"course_id"`
	CourseName   string     `json:"courseName" db:"course_name"`
	Title        *string    `json:"title,omitempty" db:"title"`
	Body         *string    `json:"body,omitempty" db:"body"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty" db:"updated_at"` // Canvas-side edit time
	ContentHash  string     `json:"-" db:"content_hash"`
	LastSyncedAt time.Time  `json:"lastSyncedAt" db:"last_synced_at"`
}

// Fingerprint returns the content hash over title, body and the source-side
// edit time.
func (f *FrontPage) Fingerprint() string {
	return contenthash.Sum(map[string]string{
		"title":      contenthash.StringPtr(f.Title),
		"body":       contenthash.StringPtr(f.Body),
		"updated_at": contenthash.TimePtr(f.UpdatedAt),
	})
}
