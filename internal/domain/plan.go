package domain

import (
	"strings"
	"time"
)

// Plan and task bounds.
const (
	MinMinutesPerDay = 10
	MaxMinutesPerDay = 240
	MinTaskMinutes   = 5
	MaxTaskMinutes   = 240
	MaxPlanTasks     = 12
)

// ISODate is the calendar-date layout used on every due date.
const ISODate = "2006-01-02"

// PlanRequest is the learner's input to plan generation.
type PlanRequest struct {
	Goal          string `json:"goal"`
	Level         string `json:"level"`
	MinutesPerDay int    `json:"minutes"`
	Deadline      string `json:"deadline"`
}

// Validate checks the request before any generative call is made.
func (r PlanRequest) Validate() error {
	if strings.TrimSpace(r.Goal) == "" {
		return invalid("goal", "must not be empty")
	}
	if r.MinutesPerDay < MinMinutesPerDay || r.MinutesPerDay > MaxMinutesPerDay {
		return invalid("minutes", "must be in [%d,%d], got %d", MinMinutesPerDay, MaxMinutesPerDay, r.MinutesPerDay)
	}
	return nil
}

// Task is one schedulable unit of study work inside a Plan.
type Task struct {
	Title       string   `json:"title"`
	Type        TaskType `json:"type"`
	EstMinutes  int      `json:"est_minutes"`
	DueDate     string   `json:"due_date"`
	ResourceRef *string  `json:"resource_ref"`
}

// Validate enforces the per-task schema bounds.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if !t.Type.Valid() {
		return invalid("type", "unknown task type %q", t.Type)
	}
	if t.EstMinutes < MinTaskMinutes || t.EstMinutes > MaxTaskMinutes {
		return invalid("est_minutes", "must be in [%d,%d], got %d", MinTaskMinutes, MaxTaskMinutes, t.EstMinutes)
	}
	if _, err := time.Parse(ISODate, t.DueDate); err != nil {
		return invalid("due_date", "must be YYYY-MM-DD, got %q", t.DueDate)
	}
	return nil
}

// Plan is a validated set of milestones and scheduled tasks.
type Plan struct {
	Milestones []string `json:"milestones"`
	Tasks      []Task   `json:"tasks"`
}

// Validate enforces non-empty milestones and per-task bounds.
func (p Plan) Validate() error {
	if len(p.Milestones) == 0 {
		return invalid("milestones", "at least one milestone is required")
	}
	for i, m := range p.Milestones {
		if strings.TrimSpace(m) == "" {
			return invalid("milestones", "milestone %d is empty", i)
		}
	}
	if len(p.Tasks) == 0 {
		return invalid("tasks", "at least one task is required")
	}
	if len(p.Tasks) > MaxPlanTasks {
		return invalid("tasks", "at most %d tasks allowed, got %d", MaxPlanTasks, len(p.Tasks))
	}
	for i, t := range p.Tasks {
		if err := t.Validate(); err != nil {
			return invalid("tasks", "task %d: %v", i, err)
		}
	}
	return nil
}
