package models

import (
	"time"

	"github.com/yigit/canvasmirror/internal/pkg/contenthash"
)

// Assignment represents a mirrored Canvas assignment.
type Assignment struct {
	AssignmentID     int64      `json:"assignmentId" db:"assignment_id"`
	CourseID         int64      `json:"courseId" db:"course_id"`
	CourseName       string     `json:"courseName" db:"course_name"`
	Name             string     `json:"name" db:"name"`
	Description      *string    `json:"description,omitempty" db:"description"` // Nullable
	DueAt            *time.Time `json:"dueAt,omitempty" db:"due_at"`
	PointsPossible   *float64   `json:"pointsPossible,omitempty" db:"points_possible"`
	HTMLURL          *string    `json:"htmlUrl,omitempty" db:"html_url"`
	SubmissionStatus *string    `json:"submissionStatus,omitempty" db:"submission_status"`
	ContentHash      string     `json:"-" db:"content_hash"`
	LastSyncedAt     time.Time  `json:"lastSyncedAt" db:"last_synced_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// Fingerprint returns the content hash over name, description, due date and
// points. Links and submission state change without the assignment itself
// changing, so they stay out of the hash.
func (a *Assignment) Fingerprint() string {
	return contenthash.Sum(map[string]string{
		"name":            contenthash.String(a.Name),
		"description":     contenthash.StringPtr(a.Description),
		"due_at":          contenthash.TimePtr(a.DueAt),
		"points_possible": contenthash.Float64Ptr(a.PointsPossible),
	})
}
