package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yigit/canvasmirror/internal/pkg/helpers"
)

func sampleAssignment() Assignment {
	return Assignment{
		AssignmentID:   101,
		CourseID:       5555,
		CourseName:     "Advanced Software Development",
		Name:           "Problem Set 4",
		Description:    helpers.StrPtr("<p>Graphs and flows.</p>"),
		DueAt:          helpers.TimePtr(time.Date(2025, 10, 3, 23, 59, 0, 0, time.UTC)),
		PointsPossible: helpers.Float64Ptr(100),
		HTMLURL:        helpers.StrPtr("https://canvas.example.edu/courses/5555/assignments/101"),
	}
}

func TestAssignmentFingerprintIgnoresBookkeeping(t *testing.T) {
	a := sampleAssignment()
	before := a.Fingerprint()

	// None of these participate in the hash
	a.HTMLURL = helpers.StrPtr("https://mirror.example.edu/moved")
	a.SubmissionStatus = helpers.StrPtr("online_upload")
	a.CourseName = "Renamed Course"
	a.ContentHash = "bogus"
	a.LastSyncedAt = time.Now()

	assert.Equal(t, before, a.Fingerprint())
}

func TestAssignmentFingerprintTracksContent(t *testing.T) {
	base := sampleAssignment()

	mutations := map[string]func(*Assignment){
		"name":        func(a *Assignment) { a.Name = "Problem Set 5" },
		"description": func(a *Assignment) { a.Description = nil },
		"due_at":      func(a *Assignment) { a.DueAt = helpers.TimePtr(time.Date(2025, 10, 4, 23, 59, 0, 0, time.UTC)) },
		"points":      func(a *Assignment) { a.PointsPossible = helpers.Float64Ptr(50) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			a := sampleAssignment()
			mutate(&a)
			assert.NotEqual(t, base.Fingerprint(), a.Fingerprint())
		})
	}
}

func TestCourseFingerprint(t *testing.T) {
	c := Course{CourseID: 5555, CourseCode: "CS 3240", CourseName: "Advanced Software Development"}
	before := c.Fingerprint()

	c.LastSyncedAt = time.Now()
	assert.Equal(t, before, c.Fingerprint())

	c.CourseName = "Advanced Software Development (SP26)"
	assert.NotEqual(t, before, c.Fingerprint())
}

func TestAnnouncementFingerprint(t *testing.T) {
	a := Announcement{
		AnnouncementID: 9001,
		CourseID:       5555,
		Title:          "Midterm room change",
		Message:        helpers.StrPtr("<p>We moved to Thornton E316.</p>"),
		PostedAt:       helpers.TimePtr(time.Date(2025, 9, 20, 14, 0, 0, 0, time.UTC)),
	}
	before := a.Fingerprint()

	a.HTMLURL = helpers.StrPtr("https://canvas.example.edu/announcements/9001")
	assert.Equal(t, before, a.Fingerprint())

	a.Message = helpers.StrPtr("<p>We moved back.</p>")
	assert.NotEqual(t, before, a.Fingerprint())
}

func TestFrontPageFingerprintNilFields(t *testing.T) {
	empty := FrontPage{CourseID: 5555}
	withTitle := FrontPage{CourseID: 5555, Title: helpers.StrPtr("")}

	// nil title and empty title are different contents
	assert.NotEqual(t, empty.Fingerprint(), withTitle.Fingerprint())
}

func TestQuizAndModuleFingerprints(t *testing.T) {
	q := Quiz{QuizID: 77, CourseID: 5555, Title: "Reading quiz 3"}
	qBefore := q.Fingerprint()
	q.PointsPossible = helpers.Float64Ptr(10)
	assert.NotEqual(t, qBefore, q.Fingerprint())

	pos := int64(2)
	m := CourseModule{ModuleID: 13, CourseID: 5555, Name: "Week 2", Position: &pos}
	mBefore := m.Fingerprint()
	newPos := int64(3)
	m.Position = &newPos
	assert.NotEqual(t, mBefore, m.Fingerprint())
}

func TestSyncReportTotals(t *testing.T) {
	r := SyncReport{Courses: 2, Assignments: 10, Announcements: 4, FrontPages: 2, Quizzes: 3, Modules: 6}

	assert.Equal(t, 27, r.Total())
	assert.False(t, r.HasErrors())

	r.Errors = append(r.Errors, "assignment 3: persistence failure")
	assert.True(t, r.HasErrors())
}
