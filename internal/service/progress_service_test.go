package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/alexanderramin/tutor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressService_PlanProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.seedPlan(t, "Go", -3, -1, 0, 2)
	other := env.seedPlan(t, "Rust", 0)

	env.markDone(t, plan.Tasks[0].ID, serviceNow.AddDate(0, 0, -3))
	env.markDone(t, plan.Tasks[1].ID, serviceNow.AddDate(0, 0, -1))
	env.markDone(t, plan.Tasks[1].ID, serviceNow.Add(-time.Hour))
	require.NoError(t, env.progress.Create(ctx, testutil.NewTestProgress(plan.Tasks[2].ID,
		testutil.WithOutcome(domain.OutcomePartial), testutil.WithFinishedAt(serviceNow))))
	env.markDone(t, other.Tasks[0].ID, serviceNow.AddDate(0, 0, -2))

	svc := NewProgressService(env.plans, env.tasks, env.progress, fixedClock())
	got, err := svc.PlanProgress(ctx, plan.ID)
	require.NoError(t, err)

	assert.Equal(t, &domain.PlanProgress{PlanID: plan.ID, Total: 4, Done: 2, StreakDays: 2}, got)
}

func TestProgressService_NoStreakWithoutDoneToday(t *testing.T) {
	env := newTestEnv(t)
	plan := env.seedPlan(t, "Go", -1, 0)
	env.markDone(t, plan.Tasks[0].ID, serviceNow.AddDate(0, 0, -1))

	svc := NewProgressService(env.plans, env.tasks, env.progress, fixedClock())
	got, err := svc.PlanProgress(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Done)
	assert.Zero(t, got.StreakDays)
}

func TestProgressService_MissingPlan(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProgressService(env.plans, env.tasks, env.progress, fixedClock())

	_, err := svc.PlanProgress(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStreakDays(t *testing.T) {
	today := testutil.Day(2026, time.March, 10)
	at := func(day int, hour int) time.Time {
		return time.Date(2026, time.March, day, hour, 0, 0, 0, time.UTC)
	}
	plusTwo := time.FixedZone("UTC+2", 2*3600)

	tests := []struct {
		name  string
		times []time.Time
		loc   *time.Location
		want  int
	}{
		{"none", nil, time.UTC, 0},
		{"today only", []time.Time{at(10, 8)}, time.UTC, 1},
		{"three days", []time.Time{at(10, 8), at(9, 20), at(9, 7), at(8, 1)}, time.UTC, 3},
		{"gap breaks streak", []time.Time{at(10, 8), at(8, 8)}, time.UTC, 1},
		{"yesterday only", []time.Time{at(9, 8)}, time.UTC, 0},
		// 22:30 UTC on the 9th is already the 10th two hours east
		{"bucketed in clock zone", []time.Time{time.Date(2026, time.March, 9, 22, 30, 0, 0, time.UTC)}, plusTwo, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, streakDays(tt.times, today, tt.loc))
		})
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 5, clampInt(3, 5, 240))
	assert.Equal(t, 240, clampInt(900, 5, 240))
	assert.Equal(t, 30, clampInt(30, 5, 240))
}
