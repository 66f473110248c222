package models

import (
	"time"

	"github.com/yigit/canvasmirror/internal/pkg/contenthash"
)

// Announcement represents a mirrored Canvas course announcement.
type Announcement struct {
	AnnouncementID int64      `json:"announcementId" db:"announcement_id"`
	CourseID       int64      `json:"courseId" db:"course_id"`
	CourseName     string     `json:"courseName" db:"course_name"`
	Title          string     `json:"title" db:"title"`
	Message        *string    `json:"message,omitempty" db:"message"` // Nullable
	PostedAt       *time.Time `json:"postedAt,omitempty" db:"posted_at"`
	HTMLURL        *string    `json:"htmlUrl,omitempty" db:"html_url"`
	ContentHash    string     `json:"-" db:"content_hash"`
	LastSyncedAt   time.Time  `json:"lastSyncedAt" db:"last_synced_at"`
}

// Fingerprint returns the content hash over title, message and posting time.
func (a *Announcement) Fingerprint() string {
	return contenthash.Sum(map[string]string{
		"title":     contenthash.String(a.Title),
		"message":   contenthash.StringPtr(a.Message),
		"posted_at": contenthash.TimePtr(a.PostedAt),
	})
}
