package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/deadline"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/intelligence"
	"github.com/alexanderramin/tutor/internal/repository"
)

type planService struct {
	planner  intelligence.PlanService
	plans    repository.PlanRepo
	uow      db.UnitOfWork
	clock    Clock
	observer UseCaseObserver
}

func NewPlanService(
	planner intelligence.PlanService,
	plans repository.PlanRepo,
	uow db.UnitOfWork,
	clock Clock,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		planner:  planner,
		plans:    plans,
		uow:      uow,
		clock:    clockOrDefault(clock),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *planService) Generate(ctx context.Context, req domain.PlanRequest) (plan *domain.Plan, err error) {
	startedAt := time.Now()
	fields := map[string]any{"deadline": req.Deadline, "minutes": req.MinutesPerDay}
	defer func() { observe(ctx, s.observer, "generate-plan", startedAt, err, fields) }()

	plan, err = s.planner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	fields["task_count"] = len(plan.Tasks)
	return plan, nil
}

func (s *planService) GenerateAndSave(ctx context.Context, req domain.PlanRequest, name string) (*domain.StoredPlan, error) {
	plan, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Save(ctx, SavePlanInput{Name: name, Request: req, Plan: *plan})
}

func (s *planService) Save(ctx context.Context, in SavePlanInput) (stored *domain.StoredPlan, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": in.Name}
	defer func() { observe(ctx, s.observer, "save-plan", startedAt, err, fields) }()

	if err = in.Request.Validate(); err != nil {
		return nil, err
	}
	if err = in.Plan.Validate(); err != nil {
		return nil, err
	}

	stored, err = toStoredPlan(in, s.clock())
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLitePlanRepo(tx).Create(ctx, stored)
	})
	if err != nil {
		return nil, fmt.Errorf("saving plan: %w", err)
	}
	fields["plan_id"] = stored.ID
	fields["task_count"] = len(stored.Tasks)
	return stored, nil
}

func toStoredPlan(in SavePlanInput, now time.Time) (*domain.StoredPlan, error) {
	stored := &domain.StoredPlan{
		Name:      domain.CoalesceStr(strings.TrimSpace(in.Name), strings.TrimSpace(in.Request.Goal)),
		Goal:      strings.TrimSpace(in.Request.Goal),
		Level:     strings.TrimSpace(in.Request.Level),
		Minutes:   in.Request.MinutesPerDay,
		Deadline:  strings.TrimSpace(in.Request.Deadline),
		CreatedAt: now.UTC(),
	}
	for i, text := range in.Plan.Milestones {
		stored.Milestones = append(stored.Milestones, domain.Milestone{OrderIndex: i + 1, Text: text})
	}
	for i, t := range in.Plan.Tasks {
		due, err := deadline.ParseISO(t.DueDate)
		if err != nil {
			return nil, fmt.Errorf("task %d due date: %w", i+1, err)
		}
		stored.Tasks = append(stored.Tasks, domain.StoredTask{
			OrderIndex:  i + 1,
			Title:       strings.TrimSpace(t.Title),
			Type:        t.Type,
			EstMinutes:  t.EstMinutes,
			DueDate:     due,
			ResourceRef: t.ResourceRef,
		})
	}
	return stored, nil
}

func (s *planService) Get(ctx context.Context, id int64) (*domain.StoredPlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *planService) List(ctx context.Context) ([]repository.PlanSummary, error) {
	return s.plans.List(ctx)
}

func (s *planService) Delete(ctx context.Context, id int64) (err error) {
	startedAt := time.Now()
	defer func() { observe(ctx, s.observer, "delete-plan", startedAt, err, map[string]any{"plan_id": id}) }()

	return s.plans.Delete(ctx, id)
}
