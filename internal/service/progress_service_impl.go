package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/repository"
)

// streakLookbackDays bounds how far back done records are read for a streak.
const streakLookbackDays = 366

type progressService struct {
	plans    repository.PlanRepo
	tasks    repository.TaskRepo
	progress repository.ProgressRepo
	clock    Clock
}

func NewProgressService(
	plans repository.PlanRepo,
	tasks repository.TaskRepo,
	progress repository.ProgressRepo,
	clock Clock,
) ProgressService {
	return &progressService{plans: plans, tasks: tasks, progress: progress, clock: clockOrDefault(clock)}
}

func (s *progressService) PlanProgress(ctx context.Context, planID int64) (*domain.PlanProgress, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, err
	}

	all, err := s.tasks.ListByPlan(ctx, planID, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}
	done, err := s.progress.CountDoneTasks(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("counting done tasks: %w", err)
	}

	now := s.clock()
	times, err := s.progress.DoneTimes(ctx, planID, now.AddDate(0, 0, -streakLookbackDays))
	if err != nil {
		return nil, fmt.Errorf("reading done times: %w", err)
	}

	return &domain.PlanProgress{
		PlanID:     planID,
		Total:      len(all),
		Done:       done,
		StreakDays: streakDays(times, s.clock.today(), now.Location()),
	}, nil
}
