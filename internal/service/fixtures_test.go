package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/intelligence"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/alexanderramin/tutor/internal/testutil"
	"github.com/stretchr/testify/require"
)

// serviceNow is the fixed instant every service test runs at.
var serviceNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

var serviceToday = testutil.Day(2026, time.March, 10)

func fixedClock() Clock {
	return func() time.Time { return serviceNow }
}

type testEnv struct {
	db       *sql.DB
	plans    *repository.SQLitePlanRepo
	tasks    *repository.SQLiteTaskRepo
	progress *repository.SQLiteProgressRepo
	sessions *repository.SQLiteStudySessionRepo
	uow      db.UnitOfWork
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &testEnv{
		db:       database,
		plans:    repository.NewSQLitePlanRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		progress: repository.NewSQLiteProgressRepo(database),
		sessions: repository.NewSQLiteStudySessionRepo(database),
		uow:      testutil.NewTestUoW(database),
	}
}

// seedPlan stores a plan with one task per offset (in days from serviceToday).
func (e *testEnv) seedPlan(t *testing.T, goal string, offsets ...int) *domain.StoredPlan {
	t.Helper()
	dues := make([]time.Time, len(offsets))
	for i, off := range offsets {
		dues[i] = serviceToday.AddDate(0, 0, off)
	}
	plan := testutil.NewTestPlan(goal, dues)
	require.NoError(t, e.plans.Create(context.Background(), plan))
	return plan
}

func (e *testEnv) markDone(t *testing.T, taskID int64, at time.Time) {
	t.Helper()
	p := testutil.NewTestProgress(taskID, testutil.WithFinishedAt(at))
	require.NoError(t, e.progress.Create(context.Background(), p))
}

func (e *testEnv) taskService(coach intelligence.CoachService) TaskService {
	return NewTaskService(TaskServiceDeps{
		Plans:    e.plans,
		Tasks:    e.tasks,
		Progress: e.progress,
		Sessions: e.sessions,
		Coach:    coach,
		UoW:      e.uow,
		Clock:    fixedClock(),
	})
}

type fakePlanner struct {
	plan  *domain.Plan
	err   error
	calls int
}

func (f *fakePlanner) Generate(_ context.Context, _ domain.PlanRequest) (*domain.Plan, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

type fakeCoach struct {
	decision *domain.CoachDecision
	err      error
	inputs   []intelligence.CoachInput
}

func (f *fakeCoach) Decide(_ context.Context, in intelligence.CoachInput) (*domain.CoachDecision, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.decision, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func ptr[T any](v T) *T { return &v }
