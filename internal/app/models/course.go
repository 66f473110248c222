package models

import (
	"time"

	"github.com/yigit/canvasmirror/internal/pkg/contenthash"
)

// Course represents a mirrored Canvas course. CourseID is the Canvas-side
// identifier and serves as the natural primary key.
type Course struct {
	CourseID     int64     `json:"courseId" db:"course_id"`
	CourseCode   string    `json:"courseCode" db:"course_code"`
	CourseName   string    `json:"courseName" db:"course_name"`
	ContentHash  string    `json:"-" db:"content_hash"`
	LastSyncedAt time.Time `json:"lastSyncedAt" db:"last_synced_at"`
}

// Fingerprint returns the content hash over the fields whose change is
// meaningful for a course. Bookkeeping columns are never hashed.
func (c *Course) Fingerprint() string {
	return contenthash.Sum(map[string]string{
		"course_code": contenthash.String(c.CourseCode),
		"course_name": contenthash.String(c.CourseName),
	})
}
