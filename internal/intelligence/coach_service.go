package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/linkcheck"
	"github.com/alexanderramin/tutor/internal/llm"
)

const (
	coachTemperature  = 0.2
	coachNumCtx       = 2048
	maxRecentOutcomes = 5
)

// CoachInput describes the task that was just completed and how it went.
type CoachInput struct {
	TaskTitle      string
	TaskType       domain.TaskType
	EstMinutes     int
	DueDate        string
	Reflection     domain.Reflection
	RecentOutcomes []domain.Outcome // oldest first
}

// CoachService proposes plan adaptations after a reflection.
type CoachService interface {
	Decide(ctx context.Context, in CoachInput) (*domain.CoachDecision, error)
}

type coachService struct {
	client llm.LLMClient
	links  linkcheck.Checker
	limit  int
}

// NewCoachService creates a CoachService. links may be nil, in which case
// resource links are passed through unchecked.
func NewCoachService(client llm.LLMClient, links linkcheck.Checker, maxConcurrency int) CoachService {
	if maxConcurrency <= 0 {
		maxConcurrency = linkcheck.DefaultMaxConcurrency
	}
	return &coachService{client: client, links: links, limit: maxConcurrency}
}

func (s *coachService) Decide(ctx context.Context, in CoachInput) (*domain.CoachDecision, error) {
	if err := in.Reflection.Validate(); err != nil {
		return nil, err
	}

	temp := coachTemperature
	numCtx := coachNumCtx
	raw, err := s.client.GenerateStructured(ctx, llm.GenerateRequest{
		Task:         llm.TaskCoach,
		SystemPrompt: coachSystemPrompt,
		Prompt:       buildCoachPrompt(in),
		Temperature:  &temp,
		NumCtx:       &numCtx,
	})
	if err != nil {
		return nil, fmt.Errorf("coach decision failed: %w", err)
	}

	var rd rawDecision
	if err := json.Unmarshal(raw, &rd); err != nil {
		return nil, &llm.ParseError{Content: string(raw), Err: err}
	}
	s.scrubActionRefs(ctx, rd.Actions)

	decision, err := toDecision(rd)
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// scrubActionRefs blanks every resource_ref the link checker rejects.
func (s *coachService) scrubActionRefs(ctx context.Context, actions []rawAction) {
	if s.links == nil {
		return
	}
	refs := make([]*string, len(actions))
	for i, a := range actions {
		refs[i] = optionalString(a.ResourceRef)
	}
	scrubbed := linkcheck.ScrubRefs(ctx, s.links, refs, s.limit)
	for i := range actions {
		if scrubbed[i] == nil {
			actions[i].ResourceRef = flexString{}
		}
	}
}

func toDecision(rd rawDecision) (*domain.CoachDecision, error) {
	decision := &domain.CoachDecision{Actions: make([]domain.CoachAction, 0, len(rd.Actions))}
	for i, ra := range rd.Actions {
		action, err := toAction(ra)
		if err != nil {
			return nil, &domain.ValidationError{Field: "actions", Message: fmt.Sprintf("action %d: %v", i, err)}
		}
		decision.Actions = append(decision.Actions, action)
	}
	if err := decision.Validate(); err != nil {
		return nil, err
	}
	return decision, nil
}

func toAction(ra rawAction) (domain.CoachAction, error) {
	switch domain.ActionKind(strings.ToLower(ra.Type.Trimmed())) {
	case domain.ActionAddTask:
		return domain.AddTaskAction{
			Title:       ra.Title.Trimmed(),
			EstMinutes:  optionalInt(ra.EstMinutes),
			DueInDays:   optionalInt(ra.DueInDays),
			ResourceRef: optionalString(ra.ResourceRef),
		}, nil
	case domain.ActionRescheduleTask:
		var target *int64
		if ra.TargetTaskID.Valid {
			id := int64(ra.TargetTaskID.Value)
			target = &id
		}
		return domain.RescheduleTaskAction{
			TargetTaskID: target,
			PushDays:     ra.PushDays.Or(0),
		}, nil
	case domain.ActionTip:
		return domain.TipAction{Tip: ra.Tip.Trimmed()}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", ra.Type.Value)
	}
}

func buildCoachPrompt(in CoachInput) string {
	r := in.Reflection

	blockers := "none"
	if r.Blockers != nil && strings.TrimSpace(*r.Blockers) != "" {
		blockers = strings.TrimSpace(*r.Blockers)
	}
	took := "unknown"
	if r.TookMinutes != nil {
		took = strconv.Itoa(*r.TookMinutes)
	}

	return fmt.Sprintf(coachPromptTemplate,
		in.TaskTitle, in.TaskType, in.EstMinutes, in.DueDate,
		r.Confidence, blockers, took, r.WantMorePractice,
		formatOutcomes(in.RecentOutcomes))
}

// formatOutcomes joins the newest maxRecentOutcomes labels, oldest first.
func formatOutcomes(outcomes []domain.Outcome) string {
	if len(outcomes) > maxRecentOutcomes {
		outcomes = outcomes[len(outcomes)-maxRecentOutcomes:]
	}
	if len(outcomes) == 0 {
		return "none"
	}
	labels := make([]string, len(outcomes))
	for i, o := range outcomes {
		labels[i] = string(o)
	}
	return strings.Join(labels, ", ")
}
