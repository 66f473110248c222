package models

import (
	"time"

	"github.com/yigit/canvasmirror/internal/pkg/contenthash"
)

// Quiz represents a mirrored Canvas quiz.
type Quiz struct {
	QuizID         int64      `json:"quizId" db:"quiz_id"`
	CourseID       int64      `json:"courseId" db:"course_id"`
	CourseName     string     `json:"courseName" db:"course_name"`
	Title          string     `json:"title" db:"title"`
	DueAt          *time.Time `json:"dueAt,omitempty" db:"due_at"`
	PointsPossible *float64   `json:"pointsPossible,omitempty" db:"points_possible"`
	HTMLURL        *string    `json:"htmlUrl,omitempty" db:"html_url"`
	ContentHash    string     `json:"-" db:"content_hash"`
	LastSyncedAt   time.Time  `json:"lastSyncedAt" db:"last_synced_at"`
}

// Fingerprint returns the content hash over title, due date and points.
func (q *Quiz) Fingerprint() string {
	return contenthash.Sum(map[string]string{
		"title":           contenthash.String(q.Title),
		"due_at":          contenthash.TimePtr(q.DueAt),
		"points_possible": contenthash.Float64Ptr(q.PointsPossible),
	})
}
