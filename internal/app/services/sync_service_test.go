package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/canvas"
	"github.com/yigit/canvasmirror/internal/pkg/helpers"
)

type fakeFetcher struct {
	snapshot *canvas.Snapshot
	err      error
}

func (f *fakeFetcher) FetchAll(_ context.Context) (*canvas.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

// eventLog records upsert order across fake stores. The nil receiver is a
// no-op so most tests can skip it.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeCourseStore struct {
	mu      sync.Mutex
	records []*models.Course
	fail    func(*models.Course) error
	events  *eventLog
}

func (f *fakeCourseStore) Upsert(_ context.Context, course *models.Course) error {
	if f.fail != nil {
		if err := f.fail(course); err != nil {
			return err
		}
	}
	f.events.add(fmt.Sprintf("course:%d", course.CourseID))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, course)
	return nil
}

type fakeAssignmentStore struct {
	mu      sync.Mutex
	records []*models.Assignment
	fail    func(*models.Assignment) error
	events  *eventLog
}

func (f *fakeAssignmentStore) Upsert(_ context.Context, assignment *models.Assignment) error {
	if f.fail != nil {
		if err := f.fail(assignment); err != nil {
			return err
		}
	}
	f.events.add(fmt.Sprintf("assignment:%d", assignment.AssignmentID))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, assignment)
	return nil
}

type fakeAnnouncementStore struct {
	mu      sync.Mutex
	records []*models.Announcement
}

func (f *fakeAnnouncementStore) Upsert(_ context.Context, announcement *models.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, announcement)
	return nil
}

type fakeFrontPageStore struct {
	mu      sync.Mutex
	records []*models.FrontPage
}

func (f *fakeFrontPageStore) Upsert(_ context.Context, page *models.FrontPage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, page)
	return nil
}

type fakeQuizStore struct {
	mu      sync.Mutex
	records []*models.Quiz
}

func (f *fakeQuizStore) Upsert(_ context.Context, quiz *models.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, quiz)
	return nil
}

type fakeModuleStore struct {
	mu      sync.Mutex
	records []*models.CourseModule
	events  *eventLog
}

func (f *fakeModuleStore) Upsert(_ context.Context, module *models.CourseModule) error {
	f.events.add(fmt.Sprintf("module:%d", module.ModuleID))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, module)
	return nil
}

type fakeRunStore struct {
	mu        sync.Mutex
	created   []*models.SyncRun
	finalized []models.SyncRun
	createErr error
}

func (f *fakeRunStore) Create(_ context.Context, run *models.SyncRun) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	run.StartedAt = time.Now()
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunStore) Finalize(_ context.Context, run *models.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	run.FinishedAt = &now
	f.finalized = append(f.finalized, *run)
	return nil
}

type fakeStores struct {
	courses       *fakeCourseStore
	assignments   *fakeAssignmentStore
	announcements *fakeAnnouncementStore
	frontPages    *fakeFrontPageStore
	quizzes       *fakeQuizStore
	modules       *fakeModuleStore
	runs          *fakeRunStore
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		courses:       &fakeCourseStore{},
		assignments:   &fakeAssignmentStore{},
		announcements: &fakeAnnouncementStore{},
		frontPages:    &fakeFrontPageStore{},
		quizzes:       &fakeQuizStore{},
		modules:       &fakeModuleStore{},
		runs:          &fakeRunStore{},
	}
}

func (f *fakeStores) stores() Stores {
	return Stores{
		Courses:       f.courses,
		Assignments:   f.assignments,
		Announcements: f.announcements,
		FrontPages:    f.frontPages,
		Quizzes:       f.quizzes,
		Modules:       f.modules,
		SyncRuns:      f.runs,
	}
}

func sampleSnapshot() *canvas.Snapshot {
	ref101 := canvas.CourseRef{CourseID: 101, CourseName: "Distributed Systems", CourseCode: "CS 4740"}
	ref102 := canvas.CourseRef{CourseID: 102, CourseName: "Databases", CourseCode: "CS 4750"}
	due := time.Date(2025, 10, 3, 23, 59, 0, 0, time.UTC)

	return &canvas.Snapshot{
		Courses: []canvas.Course{
			{ID: 101, Name: "Distributed Systems", Code: "CS 4740"},
			{ID: 102, Name: "Databases", Code: "CS 4750"},
		},
		Assignments: []canvas.CourseAssignment{
			{Course: ref101, Assignment: canvas.Assignment{
				ID:             1,
				Name:           helpers.StrPtr("Problem Set 1"),
				DueAt:          helpers.TimePtr(due),
				PointsPossible: helpers.Float64Ptr(100),
			}},
			{Course: ref101, Assignment: canvas.Assignment{
				ID:              2,
				Name:            helpers.StrPtr("Problem Set 2"),
				SubmissionTypes: []string{"online_upload"},
			}},
		},
		Announcements: []canvas.CourseAnnouncement{
			{Course: ref101, Announcement: canvas.Announcement{
				ID:       11,
				Title:    helpers.StrPtr("Midterm moved"),
				PostedAt: helpers.TimePtr(due.Add(-24 * time.Hour)),
			}},
		},
		FrontPages: []canvas.CourseFrontPage{
			{Course: ref102, Page: canvas.Page{
				Title: helpers.StrPtr("Welcome"),
				Body:  helpers.StrPtr("<p>Syllabus</p>"),
			}},
		},
		Quizzes: []canvas.CourseQuiz{
			{Course: ref102, Quiz: canvas.Quiz{ID: 21, Title: helpers.StrPtr("Quiz 1")}},
		},
		Modules: []canvas.CourseModule{
			{Course: ref101, Module: canvas.Module{ID: 31, Name: helpers.StrPtr("Week 1")}},
			{Course: ref101, Module: canvas.Module{ID: 32, Name: helpers.StrPtr("Week 2")}},
		},
	}
}

func TestRunPersistsFullSnapshot(t *testing.T) {
	fakes := newFakeStores()
	service := NewSyncService(&fakeFetcher{snapshot: sampleSnapshot()}, fakes.stores(), 2)

	report, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Courses)
	assert.Equal(t, 2, report.Assignments)
	assert.Equal(t, 1, report.Announcements)
	assert.Equal(t, 1, report.FrontPages)
	assert.Equal(t, 1, report.Quizzes)
	assert.Equal(t, 2, report.Modules)
	assert.Equal(t, 9, report.Total())
	assert.Empty(t, report.Errors)
	assert.False(t, report.HasErrors())

	require.Len(t, fakes.assignments.records, 2)
	for _, rec := range fakes.assignments.records {
		assert.Equal(t, int64(101), rec.CourseID)
		assert.Equal(t, "Distributed Systems", rec.CourseName)
	}

	require.Len(t, fakes.runs.created, 1)
	require.Len(t, fakes.runs.finalized, 1)
	finalized := fakes.runs.finalized[0]
	assert.Equal(t, models.SyncStatusSucceeded, finalized.Status)
	assert.Equal(t, 2, finalized.Courses)
	assert.Equal(t, 2, finalized.Modules)
	assert.NotNil(t, finalized.FinishedAt)
	assert.Empty(t, finalized.Errors)
}

func TestRunAppliesDefaultTitles(t *testing.T) {
	ref := canvas.CourseRef{CourseID: 101, CourseName: "Distributed Systems", CourseCode: "CS 4740"}
	snapshot := &canvas.Snapshot{
		Courses: []canvas.Course{{ID: 101, Name: "Distributed Systems", Code: "CS 4740"}},
		Assignments: []canvas.CourseAssignment{
			{Course: ref, Assignment: canvas.Assignment{ID: 1}},
		},
		Announcements: []canvas.CourseAnnouncement{
			{Course: ref, Announcement: canvas.Announcement{ID: 11}},
		},
		FrontPages: []canvas.CourseFrontPage{
			{Course: ref, Page: canvas.Page{}},
		},
		Quizzes: []canvas.CourseQuiz{
			{Course: ref, Quiz: canvas.Quiz{ID: 21}},
		},
		Modules: []canvas.CourseModule{
			{Course: ref, Module: canvas.Module{ID: 31}},
		},
	}

	fakes := newFakeStores()
	service := NewSyncService(&fakeFetcher{snapshot: snapshot}, fakes.stores(), 1)

	_, err := service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, fakes.assignments.records, 1)
	assert.Equal(t, "Untitled", fakes.assignments.records[0].Name)
	assert.Nil(t, fakes.assignments.records[0].SubmissionStatus)

	require.Len(t, fakes.announcements.records, 1)
	assert.Equal(t, "Untitled", fakes.announcements.records[0].Title)

	require.Len(t, fakes.quizzes.records, 1)
	assert.Equal(t, "Untitled", fakes.quizzes.records[0].Title)

	require.Len(t, fakes.modules.records, 1)
	assert.Equal(t, "Untitled", fakes.modules.records[0].Name)

	// A missing front page title stays absent rather than being defaulted.
	require.Len(t, fakes.frontPages.records, 1)
	assert.Nil(t, fakes.frontPages.records[0].Title)
}

func TestRunMapsSubmissionTypes(t *testing.T) {
	ref := canvas.CourseRef{CourseID: 101, CourseName: "Distributed Systems", CourseCode: "CS 4740"}
	snapshot := &canvas.Snapshot{
		Courses: []canvas.Course{{ID: 101, Name: "Distributed Systems", Code: "CS 4740"}},
		Assignments: []canvas.CourseAssignment{
			{Course: ref, Assignment: canvas.Assignment{
				ID:              1,
				Name:            helpers.StrPtr("Essay 1"),
				SubmissionTypes: []string{"online_upload", "online_text_entry"},
			}},
			{Course: ref, Assignment: canvas.Assignment{
				ID:   2,
				Name: helpers.StrPtr("Attendance"),
			}},
		},
	}

	fakes := newFakeStores()
	service := NewSyncService(&fakeFetcher{snapshot: snapshot}, fakes.stores(), 1)

	_, err := service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, fakes.assignments.records, 2)
	require.NotNil(t, fakes.assignments.records[0].SubmissionStatus)
	assert.Equal(t, "online_upload,online_text_entry", *fakes.assignments.records[0].SubmissionStatus)
	assert.Nil(t, fakes.assignments.records[1].SubmissionStatus)
}

func TestRunIsolatesRecordFailures(t *testing.T) {
	ref := canvas.CourseRef{CourseID: 101, CourseName: "Distributed Systems", CourseCode: "CS 4740"}
	snapshot := &canvas.Snapshot{
		Courses: []canvas.Course{{ID: 101, Name: "Distributed Systems", Code: "CS 4740"}},
	}
	for i := int64(1); i <= 5; i++ {
		snapshot.Assignments = append(snapshot.Assignments, canvas.CourseAssignment{
			Course:     ref,
			Assignment: canvas.Assignment{ID: i, Name: helpers.StrPtr(fmt.Sprintf("Problem Set %d", i))},
		})
	}

	var attempts atomic.Int64
	fakes := newFakeStores()
	fakes.assignments.fail = func(a *models.Assignment) error {
		attempts.Add(1)
		if a.AssignmentID == 3 {
			return errors.New("connection reset")
		}
		return nil
	}

	service := NewSyncService(&fakeFetcher{snapshot: snapshot}, fakes.stores(), 2)
	report, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), attempts.Load(), "every record should be attempted")
	assert.Equal(t, 4, report.Assignments)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "assignment 3")
	assert.Contains(t, report.Errors[0], "connection reset")

	require.Len(t, fakes.runs.finalized, 1)
	assert.Equal(t, models.SyncStatusPartial, fakes.runs.finalized[0].Status)
	assert.Equal(t, 4, fakes.runs.finalized[0].Assignments)
}

func TestRunFatalFetchFailure(t *testing.T) {
	fakes := newFakeStores()
	service := NewSyncService(&fakeFetcher{err: errors.New("canvas unreachable")}, fakes.stores(), 2)

	report, err := service.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, 0, report.Total())
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "canvas unreachable")
	assert.Empty(t, fakes.courses.records)

	require.Len(t, fakes.runs.finalized, 1)
	assert.Equal(t, models.SyncStatusFailed, fakes.runs.finalized[0].Status)
}

func TestRunWritesCoursesBeforeChildren(t *testing.T) {
	events := &eventLog{}
	fakes := newFakeStores()
	fakes.courses.events = events
	fakes.assignments.events = events
	fakes.modules.events = events

	service := NewSyncService(&fakeFetcher{snapshot: sampleSnapshot()}, fakes.stores(), 4)
	_, err := service.Run(context.Background())
	require.NoError(t, err)

	lastCourse, firstAssignment, firstModule := -1, -1, -1
	for i, event := range events.all() {
		switch {
		case event == "course:101" || event == "course:102":
			lastCourse = i
		case firstAssignment == -1 && (event == "assignment:1" || event == "assignment:2"):
			firstAssignment = i
		case firstModule == -1 && (event == "module:31" || event == "module:32"):
			firstModule = i
		}
	}
	require.NotEqual(t, -1, lastCourse)
	require.NotEqual(t, -1, firstAssignment)
	require.NotEqual(t, -1, firstModule)
	assert.Less(t, lastCourse, firstAssignment, "courses must be stored before assignments")
	assert.Less(t, firstAssignment, firstModule, "assignments must be stored before modules")
}

func TestRunConcurrencyMatchesSerial(t *testing.T) {
	buildSnapshot := func() *canvas.Snapshot {
		snapshot := &canvas.Snapshot{}
		for c := int64(1); c <= 4; c++ {
			snapshot.Courses = append(snapshot.Courses, canvas.Course{
				ID:   c,
				Name: fmt.Sprintf("Course %d", c),
				Code: fmt.Sprintf("CS %d", c),
			})
			ref := canvas.CourseRef{CourseID: c, CourseName: fmt.Sprintf("Course %d", c)}
			for a := int64(0); a < 10; a++ {
				snapshot.Assignments = append(snapshot.Assignments, canvas.CourseAssignment{
					Course:     ref,
					Assignment: canvas.Assignment{ID: c*100 + a, Name: helpers.StrPtr("PS")},
				})
			}
		}
		return snapshot
	}

	for _, concurrency := range []int{1, 4} {
		fakes := newFakeStores()
		service := NewSyncService(&fakeFetcher{snapshot: buildSnapshot()}, fakes.stores(), concurrency)

		report, err := service.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, report.Courses, "concurrency %d", concurrency)
		assert.Equal(t, 40, report.Assignments, "concurrency %d", concurrency)
		assert.Empty(t, report.Errors, "concurrency %d", concurrency)
		assert.Len(t, fakes.assignments.records, 40, "concurrency %d", concurrency)
	}
}

func TestRunContinuesWhenAuditUnavailable(t *testing.T) {
	fakes := newFakeStores()
	fakes.runs.createErr = errors.New("relation sync_runs does not exist")

	service := NewSyncService(&fakeFetcher{snapshot: sampleSnapshot()}, fakes.stores(), 2)
	report, err := service.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 9, report.Total())
	assert.Empty(t, fakes.runs.created)
	assert.Empty(t, fakes.runs.finalized)
}

func TestRunEmptySnapshot(t *testing.T) {
	fakes := newFakeStores()
	service := NewSyncService(&fakeFetcher{snapshot: &canvas.Snapshot{}}, fakes.stores(), 2)

	report, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Total())
	assert.Empty(t, report.Errors)
	require.Len(t, fakes.runs.finalized, 1)
	assert.Equal(t, models.SyncStatusSucceeded, fakes.runs.finalized[0].Status)
}
