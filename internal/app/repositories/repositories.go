package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultQueryTimeout bounds individual statements when the caller did not
// set its own deadline.
const defaultQueryTimeout = 10 * time.Second

// withQueryTimeout returns a context carrying the default statement timeout
// unless the caller already set a deadline.
func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// Repositories holds all the repository instances
type Repositories struct {
	CourseRepository       *CourseRepository
	AssignmentRepository   *AssignmentRepository
	AnnouncementRepository *AnnouncementRepository
	FrontPageRepository    *FrontPageRepository
	QuizRepository         *QuizRepository
	CourseModuleRepository *CourseModuleRepository
	SyncRunRepository      *SyncRunRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CourseRepository:       NewCourseRepository(db),
		AssignmentRepository:   NewAssignmentRepository(db),
		AnnouncementRepository: NewAnnouncementRepository(db),
		FrontPageRepository:    NewFrontPageRepository(db),
		QuizRepository:         NewQuizRepository(db),
		CourseModuleRepository: NewCourseModuleRepository(db),
		SyncRunRepository:      NewSyncRunRepository(db),
	}
}
