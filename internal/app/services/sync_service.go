// Package services contains the application service layer. Services
// coordinate fetching, mapping and persistence and expose interfaces so
// callers and tests can swap implementations.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/app/repositories"
	"github.com/yigit/canvasmirror/internal/canvas"
	"github.com/yigit/canvasmirror/internal/pkg/helpers"
	"github.com/yigit/canvasmirror/internal/pkg/logger"
)

// Fetcher pulls a full content snapshot from the source system.
// *canvas.Client satisfies this interface.
type Fetcher interface {
	FetchAll(ctx context.Context) (*canvas.Snapshot, error)
}

// CourseStore persists course records.
type CourseStore interface {
	Upsert(ctx context.Context, course *models.Course) error
}

// AssignmentStore persists assignment records.
type AssignmentStore interface {
	Upsert(ctx context.Context, assignment *models.Assignment) error
}

// AnnouncementStore persists announcement records.
type AnnouncementStore interface {
	Upsert(ctx context.Context, announcement *models.Announcement) error
}

// FrontPageStore persists front page records.
type FrontPageStore interface {
	Upsert(ctx context.Context, page *models.FrontPage) error
}

// QuizStore persists quiz records.
type QuizStore interface {
	Upsert(ctx context.Context, quiz *models.Quiz) error
}

// CourseModuleStore persists course module records.
type CourseModuleStore interface {
	Upsert(ctx context.Context, module *models.CourseModule) error
}

// SyncRunStore records sync run audit rows.
type SyncRunStore interface {
	Create(ctx context.Context, run *models.SyncRun) error
	Finalize(ctx context.Context, run *models.SyncRun) error
}

// Stores groups the per-type stores a sync pass writes to.
type Stores struct {
	Courses       CourseStore
	Assignments   AssignmentStore
	Announcements AnnouncementStore
	FrontPages    FrontPageStore
	Quizzes       QuizStore
	Modules       CourseModuleStore
	SyncRuns      SyncRunStore
}

// StoresFromRepositories wires the repository container into the store
// interfaces the sync service depends on.
func StoresFromRepositories(repos *repositories.Repositories) Stores {
	return Stores{
		Courses:       repos.CourseRepository,
		Assignments:   repos.AssignmentRepository,
		Announcements: repos.AnnouncementRepository,
		FrontPages:    repos.FrontPageRepository,
		Quizzes:       repos.QuizRepository,
		Modules:       repos.CourseModuleRepository,
		SyncRuns:      repos.SyncRunRepository,
	}
}

// SyncService defines the interface for running mirror passes.
type SyncService interface {
	Run(ctx context.Context) (*models.SyncReport, error)
}

// syncServiceImpl implements the SyncService interface
type syncServiceImpl struct {
	fetcher            Fetcher
	stores             Stores
	persistConcurrency int
	log                zerolog.Logger
}

// NewSyncService creates a new instance of SyncService
func NewSyncService(fetcher Fetcher, stores Stores, persistConcurrency int) SyncService {
	if persistConcurrency < 1 {
		persistConcurrency = 1
	}
	return &syncServiceImpl{
		fetcher:            fetcher,
		stores:             stores,
		persistConcurrency: persistConcurrency,
		log:                logger.WithComponent("sync"),
	}
}

// Run executes one full pass: fetch everything from the source, map it to
// mirror records and upsert it type by type. Courses are written first so
// that child rows never reference a course the mirror has not seen.
// Record-level failures are collected in the report and do not stop the
// pass; only a failed course fetch aborts it.
func (s *syncServiceImpl) Run(ctx context.Context) (*models.SyncReport, error) {
	started := time.Now()
	report := &models.SyncReport{}
	run := s.beginRun(ctx)

	snapshot, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		s.finalizeRun(ctx, run, report, models.SyncStatusFailed)
		return report, err
	}

	errs := &errorList{}

	report.Courses = persistBatch(ctx, s.persistConcurrency, snapshot.Courses,
		func(ctx context.Context, c canvas.Course) error {
			return s.stores.Courses.Upsert(ctx, courseRecord(c))
		},
		func(c canvas.Course, err error) {
			s.recordFailure(errs, fmt.Sprintf("course %d", c.ID), err)
		})
	s.logTypeSummary("courses", report.Courses, len(snapshot.Courses))

	report.Assignments = persistBatch(ctx, s.persistConcurrency, snapshot.Assignments,
		func(ctx context.Context, a canvas.CourseAssignment) error {
			return s.stores.Assignments.Upsert(ctx, assignmentRecord(a))
		},
		func(a canvas.CourseAssignment, err error) {
			s.recordFailure(errs, fmt.Sprintf("assignment %d", a.ID), err)
		})
	s.logTypeSummary("assignments", report.Assignments, len(snapshot.Assignments))

	report.Announcements = persistBatch(ctx, s.persistConcurrency, snapshot.Announcements,
		func(ctx context.Context, a canvas.CourseAnnouncement) error {
			return s.stores.Announcements.Upsert(ctx, announcementRecord(a))
		},
		func(a canvas.CourseAnnouncement, err error) {
			s.recordFailure(errs, fmt.Sprintf("announcement %d", a.ID), err)
		})
	s.logTypeSummary("announcements", report.Announcements, len(snapshot.Announcements))

	report.FrontPages = persistBatch(ctx, s.persistConcurrency, snapshot.FrontPages,
		func(ctx context.Context, p canvas.CourseFrontPage) error {
			return s.stores.FrontPages.Upsert(ctx, frontPageRecord(p))
		},
		func(p canvas.CourseFrontPage, err error) {
			s.recordFailure(errs, fmt.Sprintf("front page for course %d", p.Course.CourseID), err)
		})
	s.logTypeSummary("front pages", report.FrontPages, len(snapshot.FrontPages))

	report.Quizzes = persistBatch(ctx, s.persistConcurrency, snapshot.Quizzes,
		func(ctx context.Context, q canvas.CourseQuiz) error {
			return s.stores.Quizzes.Upsert(ctx, quizRecord(q))
		},
		func(q canvas.CourseQuiz, err error) {
			s.recordFailure(errs, fmt.Sprintf("quiz %d", q.ID), err)
		})
	s.logTypeSummary("quizzes", report.Quizzes, len(snapshot.Quizzes))

	report.Modules = persistBatch(ctx, s.persistConcurrency, snapshot.Modules,
		func(ctx context.Context, m canvas.CourseModule) error {
			return s.stores.Modules.Upsert(ctx, moduleRecord(m))
		},
		func(m canvas.CourseModule, err error) {
			s.recordFailure(errs, fmt.Sprintf("module %d", m.ID), err)
		})
	s.logTypeSummary("modules", report.Modules, len(snapshot.Modules))

	report.Errors = errs.all()

	status := models.SyncStatusSucceeded
	if report.HasErrors() {
		status = models.SyncStatusPartial
	}
	s.finalizeRun(ctx, run, report, status)

	s.log.Info().
		Str("status", string(status)).
		Int("records", report.Total()).
		Int("failed", len(report.Errors)).
		Dur("elapsed", time.Since(started)).
		Msg("Sync pass completed")
	return report, nil
}

// beginRun records the start of a sync run. Audit bookkeeping is best
// effort: a failure here is logged and the pass continues.
func (s *syncServiceImpl) beginRun(ctx context.Context) *models.SyncRun {
	if s.stores.SyncRuns == nil {
		return nil
	}
	run := &models.SyncRun{
		ID:     uuid.New(),
		Status: models.SyncStatusRunning,
	}
	if err := s.stores.SyncRuns.Create(ctx, run); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record sync run start")
		return nil
	}
	return run
}

// finalizeRun copies the report into the audit row and marks it finished.
func (s *syncServiceImpl) finalizeRun(ctx context.Context, run *models.SyncRun, report *models.SyncReport, status models.SyncStatus) {
	if run == nil {
		return
	}
	run.Status = status
	run.Courses = report.Courses
	run.Assignments = report.Assignments
	run.Announcements = report.Announcements
	run.FrontPages = report.FrontPages
	run.Quizzes = report.Quizzes
	run.Modules = report.Modules
	run.Errors = report.Errors
	if err := s.stores.SyncRuns.Finalize(ctx, run); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record sync run completion")
	}
}

func (s *syncServiceImpl) recordFailure(errs *errorList, entity string, err error) {
	s.log.Error().Err(err).Str("entity", entity).Msg("Failed to persist record")
	errs.add(entity, err)
}

func (s *syncServiceImpl) logTypeSummary(entity string, stored, total int) {
	event := s.log.Info()
	if stored < total {
		event = s.log.Warn()
	}
	event.Int("stored", stored).Int("fetched", total).Msgf("Synced %s", entity)
}

// persistBatch upserts items through a bounded worker group. Failures are
// reported through fail and do not stop the batch. Returns the number of
// items stored.
func persistBatch[T any](ctx context.Context, limit int, items []T, upsert func(context.Context, T) error, fail func(T, error)) int {
	var stored atomic.Int64
	group := new(errgroup.Group)
	group.SetLimit(limit)

	for _, item := range items {
		group.Go(func() error {
			if err := upsert(ctx, item); err != nil {
				fail(item, err)
				return nil
			}
			stored.Add(1)
			return nil
		})
	}
	_ = group.Wait()
	return int(stored.Load())
}

// errorList accumulates record-level failure messages across workers.
type errorList struct {
	mu   sync.Mutex
	list []string
}

func (e *errorList) add(entity string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, fmt.Sprintf("%s: %v", entity, err))
}

func (e *errorList) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

func courseRecord(c canvas.Course) *models.Course {
	return &models.Course{
		CourseID:   c.ID,
		CourseCode: c.Code,
		CourseName: c.Name,
	}
}

func assignmentRecord(a canvas.CourseAssignment) *models.Assignment {
	rec := &models.Assignment{
		AssignmentID:   a.ID,
		CourseID:       a.Course.CourseID,
		CourseName:     a.Course.CourseName,
		Name:           helpers.StringOrDefault(a.Name, "Untitled"),
		Description:    a.Description,
		DueAt:          a.DueAt,
		PointsPossible: a.PointsPossible,
		HTMLURL:        a.HTMLURL,
	}
	// The status column carries the listing's submission_types, comma joined.
	if len(a.SubmissionTypes) > 0 {
		rec.SubmissionStatus = helpers.StrPtr(strings.Join(a.SubmissionTypes, ","))
	}
	return rec
}

func announcementRecord(a canvas.CourseAnnouncement) *models.Announcement {
	return &models.Announcement{
		AnnouncementID: a.ID,
		CourseID:       a.Course.CourseID,
		CourseName:     a.Course.CourseName,
		Title:          helpers.StringOrDefault(a.Title, "Untitled"),
		Message:        a.Message,
		PostedAt:       a.PostedAt,
		HTMLURL:        a.HTMLURL,
	}
}

func frontPageRecord(p canvas.CourseFrontPage) *models.FrontPage {
	return &models.FrontPage{
		CourseID:   p.Course.CourseID,
		CourseName: p.Course.CourseName,
		Title:      p.Title,
		Body:       p.Body,
		UpdatedAt:  p.UpdatedAt,
	}
}

func quizRecord(q canvas.CourseQuiz) *models.Quiz {
	return &models.Quiz{
		QuizID:         q.ID,
		CourseID:       q.Course.CourseID,
		CourseName:     q.Course.CourseName,
		Title:          helpers.StringOrDefault(q.Title, "Untitled"),
		DueAt:          q.DueAt,
		PointsPossible: q.PointsPossible,
		HTMLURL:        q.HTMLURL,
	}
}

func moduleRecord(m canvas.CourseModule) *models.CourseModule {
	return &models.CourseModule{
		ModuleID:   m.ID,
		CourseID:   m.Course.CourseID,
		CourseName: m.Course.CourseName,
		Name:       helpers.StringOrDefault(m.Name, "Untitled"),
		Position:   m.Position,
		ItemsCount: m.ItemsCount,
	}
}
