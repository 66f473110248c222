package canvas

import "time"

// Course is one enrolled course with its display fields normalized.
type Course struct {
	ID   int64
	Name string
	Code string
}

// CourseRef identifies the course a fetched item belongs to. Sub-resource
// payloads do not repeat course details, so the fetch layer annotates them.
type CourseRef struct {
	CourseID   int64  `json:"courseId"`
	CourseName string `json:"courseName"`
	CourseCode string `json:"courseCode"`
}

// courseWire is the course object as Canvas returns it.
type courseWire struct {
	ID         int64   `json:"id"`
	Name       *string `json:"name"`
	CourseCode *string `json:"course_code"`
}

// Assignment is the assignment object as Canvas returns it. Optional fields
// stay pointers so absence survives into the mapping layer. SubmissionTypes
// is part of the default listing shape, no enrichment parameters needed.
type Assignment struct {
	ID              int64      `json:"id"`
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	DueAt           *time.Time `json:"due_at"`
	PointsPossible  *float64   `json:"points_possible"`
	HTMLURL         *string    `json:"html_url"`
	SubmissionTypes []string   `json:"submission_types"`
}

// Announcement is the discussion-topic object Canvas returns for
// announcement listings.
type Announcement struct {
	ID       int64      `json:"id"`
	Title    *string    `json:"title"`
	Message  *string    `json:"message"`
	PostedAt *time.Time `json:"posted_at"`
	HTMLURL  *string    `json:"html_url"`
}

// Page is a wiki page, used here only for course front pages.
type Page struct {
	Title     *string    `json:"title"`
	Body      *string    `json:"body"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// Quiz is the quiz object as Canvas returns it.
type Quiz struct {
	ID             int64      `json:"id"`
	Title          *string    `json:"title"`
	DueAt          *time.Time `json:"due_at"`
	PointsPossible *float64   `json:"points_possible"`
	HTMLURL        *string    `json:"html_url"`
}

// Module is one entry of a course's module listing.
type Module struct {
	ID         int64   `json:"id"`
	Name       *string `json:"name"`
	Position   *int64  `json:"position"`
	ItemsCount *int64  `json:"items_count"`
}

// CourseAssignment is an assignment annotated with its course.
type CourseAssignment struct {
	Course CourseRef
	Assignment
}

// CourseAnnouncement is an announcement annotated with its course.
type CourseAnnouncement struct {
	Course CourseRef
	Announcement
}

// CourseFrontPage is a front page annotated with its course.
type CourseFrontPage struct {
	Course CourseRef
	Page
}

// CourseQuiz is a quiz annotated with its course.
type CourseQuiz struct {
	Course CourseRef
	Quiz
}

// CourseModule is a module annotated with its course.
type CourseModule struct {
	Course CourseRef
	Module
}

// Snapshot holds everything one full fetch collected from the source.
type Snapshot struct {
	Courses       []Course
	Assignments   []CourseAssignment
	Announcements []CourseAnnouncement
	FrontPages    []CourseFrontPage
	Quizzes       []CourseQuiz
	Modules       []CourseModule
}
