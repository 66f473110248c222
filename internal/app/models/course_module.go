package models

import (
	"time"

	"github.com/yigit/canvasmirror/internal/pkg/contenthash"
)

// CourseModule represents one entry of a course's module listing.
type CourseModule struct {
	ModuleID     int64     `json:"moduleId" db:"module_id"`
	CourseID     int64     `json:"courseId" db:"course_id"`
	CourseName   string    `json:"courseName" db:"course_name"`
	Name         string    `json:"name" db:"name"`
	Position     *int64    `json:"position,omitempty" db:"position"`
	ItemsCount   *int64    `json:"itemsCount,omitempty" db:"items_count"`
	ContentHash  string    `json:"-" db:"content_hash"`
	LastSyncedAt time.Time `json:"lastSyncedAt" db:"last_synced_at"`
}

// Fingerprint returns the content hash over name, position and item count.
func (m *CourseModule) Fingerprint() string {
	return contenthash.Sum(map[string]string{
		"name":        contenthash.String(m.Name),
		"position":    contenthash.Int64Ptr(m.Position),
		"items_count": contenthash.Int64Ptr(m.ItemsCount),
	})
}
