package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus describes the lifecycle state of a sync run.
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusPartial   SyncStatus = "partial" // finished, but some records failed
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncRun is the audit record of one orchestrator run.
type SyncRun struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	StartedAt     time.Time  `json:"startedAt" db:"started_at"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty" db:"finished_at"`
	Status        SyncStatus `json:"status" db:"status"`
	Courses       int        `json:"courses" db:"courses"`
	Assignments   int        `json:"assignments" db:"assignments"`
	Announcements int        `json:"announcements" db:"announcements"`
	FrontPages    int        `json:"frontPages" db:"front_pages"`
	Quizzes       int        `json:"quizzes" db:"quizzes"`
	Modules       int        `json:"modules" db:"modules"`
	Errors        []string   `json:"errors,omitempty" db:"errors"`
}
