package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTask() Task {
	return Task{Title: "Intro to SELECT", Type: TaskLesson, EstMinutes: 30, DueDate: "2026-03-10"}
}

func TestPlanRequest_Validate(t *testing.T) {
	assert.NoError(t, PlanRequest{Goal: "Learn SQL", MinutesPerDay: 30}.Validate())

	err := PlanRequest{Goal: "  ", MinutesPerDay: 30}.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "goal", vErr.Field)

	assert.Error(t, PlanRequest{Goal: "x", MinutesPerDay: 9}.Validate())
	assert.Error(t, PlanRequest{Goal: "x", MinutesPerDay: 241}.Validate())
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Task)
		field  string
	}{
		{"blank title", func(t *Task) { t.Title = " " }, "title"},
		{"unknown type", func(t *Task) { t.Type = "podcast" }, "type"},
		{"too short", func(t *Task) { t.EstMinutes = 4 }, "est_minutes"},
		{"too long", func(t *Task) { t.EstMinutes = 241 }, "est_minutes"},
		{"bad date", func(t *Task) { t.DueDate = "03/10/2026" }, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(&task)
			var vErr *ValidationError
			require.ErrorAs(t, task.Validate(), &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
	assert.NoError(t, validTask().Validate())
}

func TestPlan_Validate(t *testing.T) {
	plan := Plan{Milestones: []string{"Basics"}, Tasks: []Task{validTask()}}
	assert.NoError(t, plan.Validate())

	assert.Error(t, Plan{Tasks: []Task{validTask()}}.Validate(), "milestones required")
	assert.Error(t, Plan{Milestones: []string{""}, Tasks: []Task{validTask()}}.Validate())
	assert.Error(t, Plan{Milestones: []string{"Basics"}}.Validate(), "tasks required")

	tooMany := Plan{Milestones: []string{"Basics"}}
	for i := 0; i < MaxPlanTasks+1; i++ {
		tooMany.Tasks = append(tooMany.Tasks, validTask())
	}
	assert.Error(t, tooMany.Validate())

	bad := validTask()
	bad.EstMinutes = 0
	err := Plan{Milestones: []string{"Basics"}, Tasks: []Task{validTask(), bad}}.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "task 1"))
}

func TestParseTaskType(t *testing.T) {
	assert.Equal(t, TaskQuiz, ParseTaskType("  Quiz "))
	assert.False(t, ParseTaskType("exercise").Valid())
}
