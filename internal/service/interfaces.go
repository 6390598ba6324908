package service

import (
	"context"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/repository"
)

// SavePlanInput is a generated (or hand-edited) plan plus the request that
// produced it.
type SavePlanInput struct {
	Name    string
	Request domain.PlanRequest
	Plan    domain.Plan
}

type PlanService interface {
	Generate(ctx context.Context, req domain.PlanRequest) (*domain.Plan, error)
	GenerateAndSave(ctx context.Context, req domain.PlanRequest, name string) (*domain.StoredPlan, error)
	Save(ctx context.Context, in SavePlanInput) (*domain.StoredPlan, error)
	Get(ctx context.Context, id int64) (*domain.StoredPlan, error)
	List(ctx context.Context) ([]repository.PlanSummary, error)
	Delete(ctx context.Context, id int64) error
}

// CompleteTaskInput records how a task went. Reflection is optional; when
// present the coach is consulted.
type CompleteTaskInput struct {
	Outcome    domain.Outcome     `json:"outcome"`
	Notes      string             `json:"notes,omitempty"`
	Rating     *int               `json:"rating,omitempty"`
	SessionID  *string            `json:"session_id,omitempty"`
	Reflection *domain.Reflection `json:"reflection,omitempty"`
}

// CompletionResult reports what completing a task changed.
type CompletionResult struct {
	ProgressID       int64                 `json:"progress_id"`
	AddedTasks       []domain.StoredTask   `json:"added_tasks"`
	RescheduledTasks int                   `json:"rescheduled_tasks"`
	SkippedActions   int                   `json:"skipped_actions"`
	Tips             []string              `json:"tips"`
	Decision         *domain.CoachDecision `json:"decision,omitempty"`
	CoachError       string                `json:"coach_error,omitempty"`
}

type TaskService interface {
	// Today lists the plan's not-done tasks for the given scope, ordered by
	// due date then ID.
	Today(ctx context.Context, planID int64, scope domain.TaskScope) ([]domain.StoredTask, error)
	Complete(ctx context.Context, taskID int64, in CompleteTaskInput) (*CompletionResult, error)
}

type ProgressService interface {
	PlanProgress(ctx context.Context, planID int64) (*domain.PlanProgress, error)
}

type StudySessionService interface {
	// Start opens a session for the plan, or returns the one already open.
	Start(ctx context.Context, planID int64) (*domain.StudySession, error)
	End(ctx context.Context, id string) (*domain.StudySession, error)
	// Active returns the plan's open session or repository.ErrNotFound.
	Active(ctx context.Context, planID int64) (*domain.StudySession, error)
}
