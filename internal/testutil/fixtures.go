package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/google/uuid"
)

// Day returns the UTC-midnight calendar date for y-m-d.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Plan options
type PlanOption func(*domain.StoredPlan)

func WithPlanName(name string) PlanOption {
	return func(p *domain.StoredPlan) {
		p.Name = name
	}
}

func WithMilestones(texts ...string) PlanOption {
	return func(p *domain.StoredPlan) {
		p.Milestones = p.Milestones[:0]
		for i, text := range texts {
			p.Milestones = append(p.Milestones, domain.Milestone{OrderIndex: i + 1, Text: text})
		}
	}
}

func WithTasks(tasks ...domain.StoredTask) PlanOption {
	return func(p *domain.StoredPlan) {
		p.Tasks = p.Tasks[:0]
		for i, t := range tasks {
			t.OrderIndex = i + 1
			p.Tasks = append(p.Tasks, t)
		}
	}
}

func WithCreatedAt(t time.Time) PlanOption {
	return func(p *domain.StoredPlan) {
		p.CreatedAt = t
	}
}

// NewTestPlan builds a plan with three milestones and one task per due date.
// With no due dates, three tasks are created due on consecutive days from
// today.
func NewTestPlan(goal string, dueDates []time.Time, opts ...PlanOption) *domain.StoredPlan {
	now := time.Now().UTC()
	if len(dueDates) == 0 {
		today := Day(now.Year(), now.Month(), now.Day())
		dueDates = []time.Time{today, today.AddDate(0, 0, 1), today.AddDate(0, 0, 2)}
	}

	p := &domain.StoredPlan{
		Name:      goal,
		Goal:      goal,
		Level:     "beginner",
		Minutes:   30,
		Deadline:  "in 2 weeks",
		CreatedAt: now,
		Milestones: []domain.Milestone{
			{OrderIndex: 1, Text: "Foundations"},
			{OrderIndex: 2, Text: "Practice"},
			{OrderIndex: 3, Text: "Review"},
		},
	}
	for i, due := range dueDates {
		p.Tasks = append(p.Tasks, NewTestTask(fmt.Sprintf("%s task %d", goal, i+1), due, WithOrder(i+1)))
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.StoredTask)

func WithTaskType(tt domain.TaskType) TaskOption {
	return func(t *domain.StoredTask) {
		t.Type = tt
	}
}

func WithEstMinutes(m int) TaskOption {
	return func(t *domain.StoredTask) {
		t.EstMinutes = m
	}
}

func WithResourceRef(ref string) TaskOption {
	return func(t *domain.StoredTask) {
		t.ResourceRef = &ref
	}
}

func WithOrder(i int) TaskOption {
	return func(t *domain.StoredTask) {
		t.OrderIndex = i
	}
}

func NewTestTask(title string, due time.Time, opts ...TaskOption) domain.StoredTask {
	t := domain.StoredTask{
		Title:      title,
		Type:       domain.TaskLesson,
		EstMinutes: 20,
		DueDate:    due,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Progress options
type ProgressOption func(*domain.TaskProgress)

func WithOutcome(o domain.Outcome) ProgressOption {
	return func(p *domain.TaskProgress) {
		p.Outcome = o
	}
}

func WithNotes(n string) ProgressOption {
	return func(p *domain.TaskProgress) {
		p.Notes = n
	}
}

func WithFinishedAt(t time.Time) ProgressOption {
	return func(p *domain.TaskProgress) {
		p.FinishedAt = t
	}
}

func WithSessionID(id string) ProgressOption {
	return func(p *domain.TaskProgress) {
		p.SessionID = &id
	}
}

func NewTestProgress(taskID int64, opts ...ProgressOption) *domain.TaskProgress {
	p := &domain.TaskProgress{
		TaskID:     taskID,
		Outcome:    domain.OutcomeDone,
		FinishedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestStudySession(planID int64, startedAt time.Time) *domain.StudySession {
	return &domain.StudySession{
		ID:        uuid.New().String(),
		PlanID:    planID,
		StartedAt: startedAt.UTC(),
	}
}
