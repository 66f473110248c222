package dto

import (
	"time"

	"github.com/yigit/canvasmirror/internal/app/models"
)

// SyncRunResponse represents a sync run in API responses
type SyncRunResponse struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
	DurationMs    *int64     `json:"durationMs,omitempty"`
	Courses       int        `json:"courses"`
	Assignments   int        `json:"assignments"`
	Announcements int        `json:"announcements"`
	FrontPages    int        `json:"frontPages"`
	Quizzes       int        `json:"quizzes"`
	Modules       int        `json:"modules"`
	Records       int        `json:"records"`
	Errors        []string   `json:"errors,omitempty"`
}

// FromSyncRun converts a models.SyncRun to a SyncRunResponse
func FromSyncRun(run *models.SyncRun) SyncRunResponse {
	if run == nil {
		return SyncRunResponse{}
	}

	resp := SyncRunResponse{
		ID:            run.ID.String(),
		Status:        string(run.Status),
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		Courses:       run.Courses,
		Assignments:   run.Assignments,
		Announcements: run.Announcements,
		FrontPages:    run.FrontPages,
		Quizzes:       run.Quizzes,
		Modules:       run.Modules,
		Records:       run.Courses + run.Assignments + run.Announcements + run.FrontPages + run.Quizzes + run.Modules,
		Errors:        run.Errors,
	}
	if run.FinishedAt != nil {
		ms := run.FinishedAt.Sub(run.StartedAt).Milliseconds()
		resp.DurationMs = &ms
	}
	return resp
}
