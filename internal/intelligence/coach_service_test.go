package intelligence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/linkcheck"
	"github.com/alexanderramin/tutor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLinks treats any URL containing "good" as reachable.
type stubLinks struct {
	mu      sync.Mutex
	checked []string
}

func (s *stubLinks) IsReachable(_ context.Context, u string) bool {
	s.mu.Lock()
	s.checked = append(s.checked, u)
	s.mu.Unlock()
	return linkcheck.LooksSafe(u) && strings.Contains(u, "good")
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func lowConfidenceInput() CoachInput {
	return CoachInput{
		TaskTitle:  "Write your first SELECT",
		TaskType:   domain.TaskPractice,
		EstMinutes: 25,
		DueDate:    "2026-03-03",
		Reflection: domain.Reflection{Confidence: 1, WantMorePractice: true},
		RecentOutcomes: []domain.Outcome{
			domain.OutcomeSkipped, domain.OutcomeDone, domain.OutcomePartial,
			domain.OutcomeDone, domain.OutcomeDone, domain.OutcomePartial,
		},
	}
}

func TestCoachService_Decide_LowConfidenceAddsPracticeAndTip(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{raw: `{
		"actions": [
			{"type": "add_task", "title": "Practice 5 SELECT queries", "est_minutes": 20, "due_in_days": 1, "resource_ref": "https://good.example.com/select"},
			{"type": "tip", "tip": "Say each clause out loud before you type it."}
		]}`}}}
	svc := NewCoachService(client, &stubLinks{}, 8)

	decision, err := svc.Decide(context.Background(), lowConfidenceInput())
	require.NoError(t, err)

	require.Len(t, decision.Actions, 2)
	add, ok := decision.Actions[0].(domain.AddTaskAction)
	require.True(t, ok)
	require.NotNil(t, add.EstMinutes)
	assert.LessOrEqual(t, *add.EstMinutes, 30)
	require.NotNil(t, add.ResourceRef)
	assert.Equal(t, "https://good.example.com/select", *add.ResourceRef)
	assert.GreaterOrEqual(t, decision.Count(domain.ActionTip), 1)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, llm.TaskCoach, req.Task)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.2, *req.Temperature)
	assert.Contains(t, req.Prompt, "confidence: 1/5")
	assert.Contains(t, req.Prompt, "blockers: none")
	assert.Contains(t, req.Prompt, "took_minutes: unknown")
	assert.Contains(t, req.Prompt, "wants_more_practice: true")
	assert.Contains(t, req.Prompt, "Recent outcomes (up to 5): done, partial, done, done, partial")
}

func TestCoachService_Decide_ScrubsUnreachableRefs(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{raw: `{
		"actions": [
			{"type": "add_task", "title": "Read the docs", "resource_ref": "https://dead.example.com/404"},
			{"type": "add_task", "title": "Internal wiki", "resource_ref": "http://192.168.1.20/wiki"},
			{"type": "add_task", "title": "Good one", "resource_ref": "https://good.example.com"},
			{"type": "tip", "tip": "Take breaks."}
		]}`}}}
	links := &stubLinks{}
	svc := NewCoachService(client, links, 8)

	decision, err := svc.Decide(context.Background(), lowConfidenceInput())
	require.NoError(t, err)
	require.Len(t, decision.Actions, 4)

	assert.Nil(t, decision.Actions[0].(domain.AddTaskAction).ResourceRef)
	assert.Nil(t, decision.Actions[1].(domain.AddTaskAction).ResourceRef)
	require.NotNil(t, decision.Actions[2].(domain.AddTaskAction).ResourceRef)
	assert.Len(t, links.checked, 3, "tip without a ref is not checked")
}

func TestCoachService_Decide_RescheduleWithoutTargetIsValid(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{raw: `{"actions": [{"type": "reschedule_task", "push_days": 3}, {"type": "reschedule_task", "target_task_id": "42", "push_days": 2}]}`}}}
	svc := NewCoachService(client, nil, 0)

	in := lowConfidenceInput()
	in.Reflection = domain.Reflection{Confidence: 3, Blockers: strPtr("overwhelmed at work"), TookMinutes: intPtr(50)}
	decision, err := svc.Decide(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, decision.Actions, 2)
	first := decision.Actions[0].(domain.RescheduleTaskAction)
	assert.Nil(t, first.TargetTaskID)
	assert.Equal(t, 3, first.PushDays)
	second := decision.Actions[1].(domain.RescheduleTaskAction)
	require.NotNil(t, second.TargetTaskID)
	assert.Equal(t, int64(42), *second.TargetTaskID)

	prompt := client.requests[0].Prompt
	assert.Contains(t, prompt, "blockers: overwhelmed at work")
	assert.Contains(t, prompt, "took_minutes: 50")
}

func TestCoachService_Decide_EmptyActions(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{raw: `{"actions": []}`}}}
	svc := NewCoachService(client, nil, 0)

	in := lowConfidenceInput()
	in.RecentOutcomes = nil
	decision, err := svc.Decide(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, decision.Actions)
	assert.Contains(t, client.requests[0].Prompt, "Recent outcomes (up to 5): none")
}

func TestCoachService_Decide_UnknownActionTypeIsSchemaError(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{raw: `{"actions": [{"type": "delete_plan"}]}`}}}
	svc := NewCoachService(client, nil, 0)

	_, err := svc.Decide(context.Background(), lowConfidenceInput())
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "delete_plan")
	assert.Len(t, client.requests, 1, "no retry in the coach path")
}

func TestCoachService_Decide_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"add_task without title", `{"actions": [{"type": "add_task", "est_minutes": 10}]}`},
		{"tip without text", `{"actions": [{"type": "tip"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{replies: []scriptedReply{{raw: tt.raw}}}
			_, err := NewCoachService(client, nil, 0).Decide(context.Background(), lowConfidenceInput())
			var ve *domain.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestCoachService_Decide_BackendFailurePropagates(t *testing.T) {
	backendErr := &llm.BackendError{Message: "connection refused", Err: llm.ErrBackendUnavailable}
	client := &scriptedClient{replies: []scriptedReply{{err: backendErr}}}
	svc := NewCoachService(client, nil, 0)

	_, err := svc.Decide(context.Background(), lowConfidenceInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrBackendUnavailable)
	assert.Len(t, client.requests, 1)
}

func TestCoachService_Decide_InvalidReflection(t *testing.T) {
	client := &scriptedClient{}
	in := lowConfidenceInput()
	in.Reflection.Confidence = 9

	_, err := NewCoachService(client, nil, 0).Decide(context.Background(), in)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "confidence", ve.Field)
	assert.Empty(t, client.requests)
}

func TestFormatOutcomes(t *testing.T) {
	assert.Equal(t, "none", formatOutcomes(nil))
	assert.Equal(t, "done", formatOutcomes([]domain.Outcome{domain.OutcomeDone}))
	assert.Equal(t, "partial, done, done, skipped, done", formatOutcomes([]domain.Outcome{
		domain.OutcomeSkipped, domain.OutcomePartial, domain.OutcomeDone,
		domain.OutcomeDone, domain.OutcomeSkipped, domain.OutcomeDone,
	}))
}
