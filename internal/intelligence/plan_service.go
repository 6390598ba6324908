package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/deadline"
	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/llm"
)

// ErrPlannerFailed is returned once every attempt has failed. The last
// attempt's error is wrapped alongside it.
var ErrPlannerFailed = errors.New("planner failed")

// Normalization defaults for fields the backend leaves out or garbles.
const (
	defaultTaskTitle   = "Task"
	defaultTaskType    = domain.TaskLesson
	defaultTaskMinutes = 30
)

// AttemptConfig holds the sampling options for one planner attempt.
type AttemptConfig struct {
	Temperature float64
	NumCtx      int
}

// DefaultAttempts is a first try at 0.2 followed by one retry at 0.1.
var DefaultAttempts = []AttemptConfig{
	{Temperature: 0.2, NumCtx: 2048},
	{Temperature: 0.1, NumCtx: 2048},
}

// PlanService turns a learner's request into a validated Plan.
type PlanService interface {
	Generate(ctx context.Context, req domain.PlanRequest) (*domain.Plan, error)
}

// PlanOption customizes a PlanService.
type PlanOption func(*planService)

// WithPlanClock overrides the source of "today".
func WithPlanClock(now func() time.Time) PlanOption {
	return func(s *planService) { s.now = now }
}

// WithAttempts overrides the attempt schedule. An empty list is ignored.
func WithAttempts(attempts []AttemptConfig) PlanOption {
	return func(s *planService) {
		if len(attempts) > 0 {
			s.attempts = attempts
		}
	}
}

type planService struct {
	client   llm.LLMClient
	now      func() time.Time
	attempts []AttemptConfig
}

// NewPlanService creates a PlanService backed by an LLM client.
func NewPlanService(client llm.LLMClient, opts ...PlanOption) PlanService {
	s := &planService{
		client:   client,
		now:      time.Now,
		attempts: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *planService) Generate(ctx context.Context, req domain.PlanRequest) (*domain.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	anchor := deadline.Date(s.now())
	maxDays := deadline.Resolve(req.Deadline, anchor)
	prompt := buildPlanPrompt(req, maxDays, anchor)

	var lastErr error
	for i, attempt := range s.attempts {
		plan, err := s.attempt(ctx, prompt, attempt, anchor, maxDays)
		if err == nil {
			return plan, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", i+1, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrPlannerFailed, lastErr)
}

func (s *planService) attempt(ctx context.Context, prompt string, cfg AttemptConfig, anchor time.Time, maxDays int) (*domain.Plan, error) {
	temp := cfg.Temperature
	numCtx := cfg.NumCtx
	raw, err := s.client.GenerateStructured(ctx, llm.GenerateRequest{
		Task:         llm.TaskPlan,
		SystemPrompt: planSystemPrompt,
		Prompt:       prompt,
		Temperature:  &temp,
		NumCtx:       &numCtx,
	})
	if err != nil {
		return nil, err
	}

	var rp rawPlan
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, &llm.ParseError{Content: string(raw), Err: err}
	}

	plan := normalizePlan(rp, anchor, maxDays)
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

func buildPlanPrompt(req domain.PlanRequest, maxDays int, anchor time.Time) string {
	level := strings.TrimSpace(req.Level)
	if level == "" {
		level = "unspecified"
	}
	return fmt.Sprintf(planPromptTemplate,
		strings.TrimSpace(req.Goal), level, req.MinutesPerDay,
		maxDays, deadline.FormatISO(anchor), maxDays)
}

// normalizePlan converts the raw payload and keeps at most MaxPlanTasks
// tasks in backend order.
func normalizePlan(rp rawPlan, anchor time.Time, maxDays int) domain.Plan {
	milestones := make([]string, 0, len(rp.Milestones))
	for _, m := range rp.Milestones {
		milestones = append(milestones, m.Trimmed())
	}

	tasks := rp.Tasks
	if len(tasks) > domain.MaxPlanTasks {
		tasks = tasks[:domain.MaxPlanTasks]
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, rt := range tasks {
		out = append(out, normalizeTask(rt, anchor, maxDays))
	}
	return domain.Plan{Milestones: milestones, Tasks: out}
}

// normalizeTask fills defaults and pins the due date inside
// [anchor, anchor+maxDays].
func normalizeTask(rt rawTask, anchor time.Time, maxDays int) domain.Task {
	title := rt.Title.Trimmed()
	if title == "" {
		title = defaultTaskTitle
	}
	taskType := domain.ParseTaskType(rt.Type.Value)
	if taskType == "" {
		taskType = defaultTaskType
	}

	var due time.Time
	if rt.DueInDays.Present {
		offset := clamp(rt.DueInDays.Or(0), 0, maxDays)
		due = anchor.AddDate(0, 0, offset)
	} else {
		due = clampLegacyDate(rt.DueDate.Trimmed(), anchor, maxDays)
	}

	return domain.Task{
		Title:       title,
		Type:        taskType,
		EstMinutes:  rt.EstMinutes.Or(defaultTaskMinutes),
		DueDate:     deadline.FormatISO(due),
		ResourceRef: optionalString(rt.ResourceRef),
	}
}

func clampLegacyDate(s string, anchor time.Time, maxDays int) time.Time {
	d, err := deadline.ParseISO(s)
	if err != nil {
		return anchor
	}
	if d.Before(anchor) {
		return anchor
	}
	if deadline.DaysBetween(anchor, d) > maxDays {
		return anchor.AddDate(0, 0, maxDays)
	}
	return d
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
