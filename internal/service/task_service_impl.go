package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/deadline"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/intelligence"
	"github.com/alexanderramin/tutor/internal/repository"
)

const (
	upcomingFallbackLimit = 3
	recentOutcomeLimit    = 5
	defaultAddedTaskMins  = 20
	defaultAddedTaskDays  = 1
)

type taskService struct {
	plans    repository.PlanRepo
	tasks    repository.TaskRepo
	progress repository.ProgressRepo
	sessions repository.StudySessionRepo
	coach    intelligence.CoachService
	uow      db.UnitOfWork
	clock    Clock
	logger   *slog.Logger
	observer UseCaseObserver
}

// TaskServiceDeps groups the collaborators of NewTaskService. Coach may be
// nil, in which case reflections are recorded without adaptation.
type TaskServiceDeps struct {
	Plans    repository.PlanRepo
	Tasks    repository.TaskRepo
	Progress repository.ProgressRepo
	Sessions repository.StudySessionRepo
	Coach    intelligence.CoachService
	UoW      db.UnitOfWork
	Clock    Clock
	Logger   *slog.Logger
}

func NewTaskService(deps TaskServiceDeps, observers ...UseCaseObserver) TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &taskService{
		plans:    deps.Plans,
		tasks:    deps.Tasks,
		progress: deps.Progress,
		sessions: deps.Sessions,
		coach:    deps.Coach,
		uow:      deps.UoW,
		clock:    clockOrDefault(deps.Clock),
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Today(ctx context.Context, planID int64, scope domain.TaskScope) ([]domain.StoredTask, error) {
	if scope == "" {
		scope = domain.ScopeToday
	}
	if !scope.Valid() {
		return nil, &domain.ValidationError{Field: "scope", Message: fmt.Sprintf("unknown scope %q", scope)}
	}
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, err
	}

	today := s.clock.today()
	filter := repository.TaskFilter{ExcludeDone: true}
	switch scope {
	case domain.ScopeToday:
		filter.DueOnOrBefore = &today
	case domain.ScopeUpcoming:
		filter.DueAfter = &today
	}

	tasks, err := s.tasks.ListByPlan(ctx, planID, filter)
	if err != nil {
		return nil, err
	}
	if scope == domain.ScopeToday && len(tasks) == 0 {
		return s.tasks.ListByPlan(ctx, planID, repository.TaskFilter{
			ExcludeDone: true,
			DueAfter:    &today,
			Limit:       upcomingFallbackLimit,
		})
	}
	return tasks, nil
}

func (s *taskService) Complete(ctx context.Context, taskID int64, in CompleteTaskInput) (result *CompletionResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"task_id": taskID, "outcome": string(in.Outcome)}
	defer func() { observe(ctx, s.observer, "complete-task", startedAt, err, fields) }()

	if err = validateCompletion(in); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	fields["plan_id"] = task.PlanID

	if in.SessionID != nil {
		sess, sessErr := s.sessions.GetByID(ctx, *in.SessionID)
		if sessErr != nil {
			return nil, sessErr
		}
		if sess.PlanID != task.PlanID {
			return nil, &domain.ValidationError{Field: "session_id", Message: "session belongs to another plan"}
		}
	}

	result = &CompletionResult{AddedTasks: []domain.StoredTask{}, Tips: []string{}}
	if in.Reflection != nil {
		result.Decision, err = s.decide(ctx, task, *in.Reflection)
		if err != nil {
			result.CoachError = err.Error()
			s.logger.WarnContext(ctx, "coach decision failed, recording completion without adaptation",
				"task_id", taskID, "error", err)
			err = nil
		}
	}

	now := s.clock()
	today := deadline.Date(now)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p := &domain.TaskProgress{
			TaskID:     task.ID,
			Outcome:    in.Outcome,
			Notes:      strings.TrimSpace(in.Notes),
			Rating:     in.Rating,
			SessionID:  in.SessionID,
			FinishedAt: now.UTC(),
		}
		if err := repository.NewSQLiteProgressRepo(tx).Create(ctx, p); err != nil {
			return err
		}
		result.ProgressID = p.ID

		if result.Decision == nil {
			return nil
		}
		return applyDecision(ctx, repository.NewSQLiteTaskRepo(tx), task.PlanID, today, *result.Decision, result)
	})
	if err != nil {
		return nil, fmt.Errorf("completing task %d: %w", taskID, err)
	}

	fields["added"] = len(result.AddedTasks)
	fields["rescheduled"] = result.RescheduledTasks
	fields["skipped"] = result.SkippedActions
	return result, nil
}

func validateCompletion(in CompleteTaskInput) error {
	if !in.Outcome.Valid() {
		return &domain.ValidationError{Field: "outcome", Message: fmt.Sprintf("unknown outcome %q", in.Outcome)}
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return &domain.ValidationError{Field: "rating", Message: fmt.Sprintf("must be in [1,5], got %d", *in.Rating)}
	}
	if in.Reflection != nil {
		return in.Reflection.Validate()
	}
	return nil
}

// decide asks the coach about task. Outcomes are read before the new
// progress row exists, so the coach sees history up to this completion.
func (s *taskService) decide(ctx context.Context, task *domain.StoredTask, r domain.Reflection) (*domain.CoachDecision, error) {
	if s.coach == nil {
		return nil, errors.New("no coach configured")
	}
	outcomes, err := s.progress.RecentOutcomes(ctx, task.PlanID, recentOutcomeLimit)
	if err != nil {
		return nil, fmt.Errorf("reading recent outcomes: %w", err)
	}
	return s.coach.Decide(ctx, intelligence.CoachInput{
		TaskTitle:      task.Title,
		TaskType:       task.Type,
		EstMinutes:     task.EstMinutes,
		DueDate:        deadline.FormatISO(task.DueDate),
		Reflection:     r,
		RecentOutcomes: outcomes,
	})
}

// applyDecision writes each action through tasks. Actions that cannot be
// applied (a reschedule of a task in another plan, a zero push) are
// counted as skipped.
func applyDecision(
	ctx context.Context,
	tasks repository.TaskRepo,
	planID int64,
	today time.Time,
	d domain.CoachDecision,
	result *CompletionResult,
) error {
	for _, action := range d.Actions {
		switch a := action.(type) {
		case domain.AddTaskAction:
			t := addedTask(planID, today, a)
			if err := tasks.Append(ctx, t); err != nil {
				return err
			}
			result.AddedTasks = append(result.AddedTasks, *t)

		case domain.RescheduleTaskAction:
			n, err := reschedule(ctx, tasks, planID, today, a)
			if err != nil {
				return err
			}
			if n == 0 {
				result.SkippedActions++
				continue
			}
			result.RescheduledTasks += n

		case domain.TipAction:
			result.Tips = append(result.Tips, strings.TrimSpace(a.Tip))
		}
	}
	return nil
}

func addedTask(planID int64, today time.Time, a domain.AddTaskAction) *domain.StoredTask {
	mins := clampInt(domain.IntFromPtrWithDefault(defaultAddedTaskMins, a.EstMinutes), domain.MinTaskMinutes, domain.MaxTaskMinutes)
	days := max(0, domain.IntFromPtrWithDefault(defaultAddedTaskDays, a.DueInDays))
	return &domain.StoredTask{
		PlanID:      planID,
		Title:       strings.TrimSpace(a.Title),
		Type:        domain.TaskPractice,
		EstMinutes:  mins,
		DueDate:     today.AddDate(0, 0, days),
		ResourceRef: a.ResourceRef,
	}
}

// reschedule reports how many tasks moved.
func reschedule(ctx context.Context, tasks repository.TaskRepo, planID int64, today time.Time, a domain.RescheduleTaskAction) (int, error) {
	days := max(0, a.PushDays)
	if days == 0 {
		return 0, nil
	}
	if a.TargetTaskID == nil {
		return tasks.PushPendingFrom(ctx, planID, today, days)
	}

	target, err := tasks.GetByID(ctx, *a.TargetTaskID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if target.PlanID != planID {
		return 0, nil
	}
	if err := tasks.PushDueDate(ctx, target.ID, days); err != nil {
		return 0, err
	}
	return 1, nil
}
