package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
)

// PlanSummary is the list view of a stored plan.
type PlanSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Goal      string    `json:"goal"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskFilter narrows ListByPlan. Zero values mean "no constraint".
type TaskFilter struct {
	ExcludeDone   bool
	DueOnOrBefore *time.Time
	DueAfter      *time.Time
	Limit         int
}

type PlanRepo interface {
	// Create stores the plan with its milestones and tasks, assigning IDs
	// in place.
	Create(ctx context.Context, p *domain.StoredPlan) error
	GetByID(ctx context.Context, id int64) (*domain.StoredPlan, error)
	List(ctx context.Context) ([]PlanSummary, error)
	Delete(ctx context.Context, id int64) error
}

type TaskRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.StoredTask, error)
	// ListByPlan returns tasks ordered by due date, then ID.
	ListByPlan(ctx context.Context, planID int64, f TaskFilter) ([]domain.StoredTask, error)
	// Append adds a task after the plan's last task.
	Append(ctx context.Context, t *domain.StoredTask) error
	// PushDueDate moves one task later by days.
	PushDueDate(ctx context.Context, id int64, days int) error
	// PushPendingFrom moves every not-done task due on or after from by days
	// and reports how many moved.
	PushPendingFrom(ctx context.Context, planID int64, from time.Time, days int) (int, error)
}

type ProgressRepo interface {
	Create(ctx context.Context, p *domain.TaskProgress) error
	ListByTask(ctx context.Context, taskID int64) ([]domain.TaskProgress, error)
	// RecentOutcomes returns up to limit outcomes for the plan, oldest first.
	RecentOutcomes(ctx context.Context, planID int64, limit int) ([]domain.Outcome, error)
	CountDoneTasks(ctx context.Context, planID int64) (int, error)
	// DoneTimes returns finish times of "done" records for the plan since
	// the given instant, newest first.
	DoneTimes(ctx context.Context, planID int64, since time.Time) ([]time.Time, error)
}

type StudySessionRepo interface {
	Create(ctx context.Context, s *domain.StudySession) error
	GetByID(ctx context.Context, id string) (*domain.StudySession, error)
	// GetActive returns the plan's open session or ErrNotFound.
	GetActive(ctx context.Context, planID int64) (*domain.StudySession, error)
	// End closes an open session; ErrNotFound when it is missing or already ended.
	End(ctx context.Context, id string, at time.Time) error
}
