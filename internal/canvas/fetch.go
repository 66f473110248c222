package canvas

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
	"github.com/yigit/canvasmirror/internal/pkg/helpers"
)

// ActiveCourses returns the user's favorited courses, or every active
// enrollment when no favorites are set. Missing display fields are
// normalized so downstream layers never see an unnamed course.
func (c *Client) ActiveCourses(ctx context.Context) ([]Course, error) {
	wires, err := collectPages[courseWire](ctx, c, "/api/v1/users/self/favorites/courses", nil)
	if err != nil {
		return nil, err
	}

	if len(wires) == 0 {
		c.log.Debug().Msg("No favorite courses, falling back to active enrollments")
		query := url.Values{}
		query.Set("enrollment_state", "active")
		wires, err = collectPages[courseWire](ctx, c, "/api/v1/courses", query)
		if err != nil {
			return nil, err
		}
	}

	courses := make([]Course, 0, len(wires))
	for _, w := range wires {
		courses = append(courses, Course{
			ID:   w.ID,
			Name: helpers.StringOrDefault(w.Name, "Unnamed Course"),
			Code: helpers.StringOrDefault(w.CourseCode, "N/A"),
		})
	}
	return courses, nil
}

// CourseAssignments returns all assignments of a course.
func (c *Client) CourseAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	return collectPages[Assignment](ctx, c, fmt.Sprintf("/api/v1/courses/%d/assignments", courseID), nil)
}

// CourseAnnouncements returns the course's announcements posted within the
// configured window, newest window ending today.
func (c *Client) CourseAnnouncements(ctx context.Context, courseID int64) ([]Announcement, error) {
	now := time.Now()

	query := url.Values{}
	query.Set("context_codes[]", fmt.Sprintf("course_%d", courseID))
	query.Set("start_date", now.AddDate(0, 0, -c.announcementDays).Format("2006-01-02"))
	query.Set("end_date", now.Format("2006-01-02"))

	return collectPages[Announcement](ctx, c, "/api/v1/announcements", query)
}

// CourseFrontPage returns the course's wiki front page, or nil when the
// course has none. Absence is not an error.
func (c *Client) CourseFrontPage(ctx context.Context, courseID int64) (*Page, error) {
	var page *Page
	reqURL := fmt.Sprintf("%s/api/v1/courses/%d/front_page", c.baseURL, courseID)

	if _, err := c.getJSON(ctx, reqURL, &page); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	// Some course configurations answer with an empty object instead of 404.
	if page == nil || (page.Title == nil && page.Body == nil && page.UpdatedAt == nil) {
		return nil, nil
	}
	return page, nil
}

// CourseQuizzes returns the course's quizzes. Courses without the quiz
// feature respond 404, which maps to an empty list.
func (c *Client) CourseQuizzes(ctx context.Context, courseID int64) ([]Quiz, error) {
	quizzes, err := collectPages[Quiz](ctx, c, fmt.Sprintf("/api/v1/courses/%d/quizzes", courseID), nil)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return []Quiz{}, nil
		}
		return nil, err
	}
	return quizzes, nil
}

// CourseModules returns the course's module listing. Courses without
// modules enabled respond 404, which maps to an empty list.
func (c *Client) CourseModules(ctx context.Context, courseID int64) ([]Module, error) {
	modules, err := collectPages[Module](ctx, c, fmt.Sprintf("/api/v1/courses/%d/modules", courseID), nil)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return []Module{}, nil
		}
		return nil, err
	}
	return modules, nil
}

// FetchAll collects the full course snapshot: the course list first, then
// every course's sub-resources, each annotated with its course. Per-course
// fetches run concurrently up to the configured limit; any failure aborts
// the whole fetch.
func (c *Client) FetchAll(ctx context.Context) (*Snapshot, error) {
	courses, err := c.ActiveCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active courses: %w", err)
	}

	snapshot := &Snapshot{
		Courses:       courses,
		Assignments:   []CourseAssignment{},
		Announcements: []CourseAnnouncement{},
		FrontPages:    []CourseFrontPage{},
		Quizzes:       []CourseQuiz{},
		Modules:       []CourseModule{},
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.fetchConcurrency)

	for _, course := range courses {
		group.Go(func() error {
			return c.fetchCourse(groupCtx, course, snapshot, &mu)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	c.log.Info().
		Int("courses", len(snapshot.Courses)).
		Int("assignments", len(snapshot.Assignments)).
		Int("announcements", len(snapshot.Announcements)).
		Int("frontPages", len(snapshot.FrontPages)).
		Int("quizzes", len(snapshot.Quizzes)).
		Int("modules", len(snapshot.Modules)).
		Msg("Fetched course snapshot")

	return snapshot, nil
}

// fetchCourse pulls one course's sub-resources and merges them into the
// snapshot under the mutex.
func (c *Client) fetchCourse(ctx context.Context, course Course, snapshot *Snapshot, mu *sync.Mutex) error {
	ref := CourseRef{CourseID: course.ID, CourseName: course.Name, CourseCode: course.Code}

	assignments, err := c.CourseAssignments(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch assignments for course %d: %w", course.ID, err)
	}

	announcements, err := c.CourseAnnouncements(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch announcements for course %d: %w", course.ID, err)
	}

	frontPage, err := c.CourseFrontPage(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch front page for course %d: %w", course.ID, err)
	}

	quizzes, err := c.CourseQuizzes(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch quizzes for course %d: %w", course.ID, err)
	}

	modules, err := c.CourseModules(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch modules for course %d: %w", course.ID, err)
	}

	mu.Lock()
	defer mu.Unlock()

	for _, a := range assignments {
		snapshot.Assignments = append(snapshot.Assignments, CourseAssignment{Course: ref, Assignment: a})
	}
	for _, a := range announcements {
		snapshot.Announcements = append(snapshot.Announcements, CourseAnnouncement{Course: ref, Announcement: a})
	}
	if frontPage != nil {
		snapshot.FrontPages = append(snapshot.FrontPages, CourseFrontPage{Course: ref, Page: *frontPage})
	}
	for _, q := range quizzes {
		snapshot.Quizzes = append(snapshot.Quizzes, CourseQuiz{Course: ref, Quiz: q})
	}
	for _, m := range modules {
		snapshot.Modules = append(snapshot.Modules, CourseModule{Course: ref, Module: m})
	}

	return nil
}
