package models

// SyncReport aggregates what a single sync run accomplished. Counts hold
// successfully persisted records per type; Errors holds one message per
// record that failed, plus any pipeline-level failure.
type SyncReport struct {
	Courses       int      `json:"courses"`
	Assignments   int      `json:"assignments"`
	Announcements int      `json:"announcements"`
	FrontPages    int      `json:"frontPages"`
	Quizzes       int      `json:"quizzes"`
	Modules       int      `json:"modules"`
	Errors        []string `json:"errors,omitempty"`
}

// Total returns the number of records persisted across all types.
func (r *SyncReport) Total() int {
	return r.Courses + r.Assignments + r.Announcements + r.FrontPages + r.Quizzes + r.Modules
}

// HasErrors reports whether any record or pipeline failure was recorded.
func (r *SyncReport) HasErrors() bool {
	return len(r.Errors) > 0
}
