package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Title      string  `json:"title"`
	EstMinutes float64 `json:"est_minutes"`
}

func TestExtractJSON_CleanJSON(t *testing.T) {
	raw := `{"title":"Read chapter 1","est_minutes":25}`
	result, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Read chapter 1", result.Title)
	assert.Equal(t, 25.0, result.EstMinutes)
}

func TestExtractJSON_FencedJSON(t *testing.T) {
	raw := "```json\n{\"title\":\"Quiz\",\"est_minutes\":15}\n```"
	result, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Quiz", result.Title)
}

func TestExtractJSON_SurroundingText(t *testing.T) {
	raw := "Here is your task:\n{\"title\":\"Practice joins\",\"est_minutes\":30}\nGood luck!"
	result, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Practice joins", result.Title)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON[testPayload]("I cannot help with that.", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_InvalidJSON(t *testing.T) {
	_, err := ExtractJSON[testPayload](`{"title":"x", broken}`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_ValidationFailure(t *testing.T) {
	validator := func(p testPayload) error {
		if p.EstMinutes < 5 {
			return fmt.Errorf("est_minutes too small: %v", p.EstMinutes)
		}
		return nil
	}
	_, err := ExtractJSON(`{"title":"x","est_minutes":1}`, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestRepairJSON_StripsComments(t *testing.T) {
	raw := `{
  "target_task_id": 12, // for reschedule_task
  "push_days": 3 /* days */
}`
	repaired, ok := RepairJSON(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"target_task_id":12,"push_days":3}`, repaired)
}

func TestRepairJSON_LeadingDecimal(t *testing.T) {
	repaired, ok := RepairJSON(`{"temperature": .2, "note": "keep .5 in strings"}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"temperature":0.2,"note":"keep .5 in strings"}`, repaired)
}

func TestRepairJSON_NoObject(t *testing.T) {
	_, ok := RepairJSON("plain prose")
	assert.False(t, ok)
}

func TestExtractJSON_ErrorsAreParseErrors(t *testing.T) {
	_, err := ExtractJSON[testPayload]("no object here", nil)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "no object here", parseErr.Content)
}

type minutesError struct{ got float64 }

func (e *minutesError) Error() string { return fmt.Sprintf("too short: %v", e.got) }

func TestExtractJSON_ValidatorErrorIsReachable(t *testing.T) {
	validator := func(p testPayload) error {
		if p.EstMinutes < 5 {
			return &minutesError{got: p.EstMinutes}
		}
		return nil
	}
	_, err := ExtractJSON("Plan:\n```json\n{\"title\":\"x\",\"est_minutes\":1}\n```", validator)

	var me *minutesError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 1.0, me.got)
}
