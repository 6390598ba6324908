package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/tutor/internal/domain"
	"github.com/alexanderramin/tutor/internal/repository"
	"github.com/alexanderramin/tutor/internal/service"
	"github.com/stretchr/testify/assert"
)

var fmtToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestFormatPlan(t *testing.T) {
	ref := "https://www.sqltutorial.org/"
	out := stripANSI(FormatPlan(&domain.Plan{
		Milestones: []string{"Basics", "Joins"},
		Tasks: []domain.Task{
			{Title: "SELECT basics", Type: domain.TaskLesson, EstMinutes: 30, DueDate: "2026-03-10"},
			{Title: "Join drills", Type: domain.TaskPractice, EstMinutes: 45, DueDate: "2026-03-12", ResourceRef: &ref},
		},
	}, fmtToday))

	assert.Contains(t, out, "MILESTONES")
	assert.Contains(t, out, "1. Basics")
	assert.Contains(t, out, "2. Joins")
	assert.Contains(t, out, "2026-03-10 (Today)")
	assert.Contains(t, out, "2026-03-12 (In 2d)")
	assert.Contains(t, out, "https://www.sqltutorial.org/")
	assert.Contains(t, out, "Total: 1h 15m across 2 tasks")
}

func TestFormatStoredPlan(t *testing.T) {
	out := stripANSI(FormatStoredPlan(&domain.StoredPlan{
		ID: 7, Name: "sql-sprint", Goal: "Learn SQL", Level: "beginner", Minutes: 30, Deadline: "in 2 weeks",
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Milestones: []domain.Milestone{{OrderIndex: 1, Text: "Basics"}},
		Tasks: []domain.StoredTask{
			{ID: 41, Title: "SELECT basics", Type: domain.TaskLesson, EstMinutes: 30, DueDate: fmtToday.AddDate(0, 0, -1)},
		},
	}, fmtToday))

	assert.Contains(t, out, "PLAN #7 sql-sprint")
	assert.Contains(t, out, "Learn SQL")
	assert.Contains(t, out, "30m/day")
	assert.Contains(t, out, "41")
	assert.Contains(t, out, "2026-03-09 Yesterday")
}

func TestFormatTaskList(t *testing.T) {
	assert.Contains(t, stripANSI(FormatTaskList(domain.ScopeToday, nil, fmtToday)), "Nothing left to do")

	out := stripANSI(FormatTaskList(domain.ScopeUpcoming, []domain.StoredTask{
		{ID: 1, Title: "Quiz", Type: domain.TaskQuiz, EstMinutes: 15, DueDate: fmtToday.AddDate(0, 0, 1)},
		{ID: 2, Title: "Project", Type: domain.TaskProject, EstMinutes: 60, DueDate: fmtToday.AddDate(0, 0, 3)},
	}, fmtToday))
	assert.Contains(t, out, "TASKS: UPCOMING")
	assert.Contains(t, out, "Tomorrow")
	assert.Contains(t, out, "Estimated: 1h 15m")
}

func TestFormatPlanList(t *testing.T) {
	assert.Contains(t, stripANSI(FormatPlanList(nil)), "No saved plans")

	out := stripANSI(FormatPlanList([]repository.PlanSummary{
		{ID: 3, Name: "go", Goal: "Learn Go", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}))
	assert.Contains(t, out, "PLANS")
	assert.Contains(t, out, "Learn Go")
}

func TestFormatCompletion(t *testing.T) {
	out := stripANSI(FormatCompletion(5, domain.OutcomeDone, &service.CompletionResult{
		AddedTasks: []domain.StoredTask{
			{ID: 9, Title: "Extra drills", EstMinutes: 20, DueDate: fmtToday.AddDate(0, 0, 1)},
		},
		RescheduledTasks: 2,
		SkippedActions:   1,
		Tips:             []string{"Draw the join"},
	}))
	assert.Contains(t, out, "Recorded task 5 ✔ done")
	assert.Contains(t, out, "+ Added #9 Extra drills (20m), due 2026-03-11")
	assert.Contains(t, out, "Rescheduled 2 task(s)")
	assert.Contains(t, out, "1 coach action(s) could not be applied")
	assert.Contains(t, out, "• Draw the join")

	out = stripANSI(FormatCompletion(5, domain.OutcomePartial, &service.CompletionResult{CoachError: "timeout"}))
	assert.Contains(t, out, "Coach unavailable: timeout")
	assert.NotContains(t, out, "TIPS")
}

func TestFormatProgress(t *testing.T) {
	out := stripANSI(FormatProgress(&domain.PlanProgress{PlanID: 2, Total: 4, Done: 3, StreakDays: 2}))
	assert.Contains(t, out, "3 of 4 tasks done")
	assert.Contains(t, out, "2 day streak")
	assert.Contains(t, out, "75%")

	out = stripANSI(FormatProgress(&domain.PlanProgress{PlanID: 2}))
	assert.Contains(t, out, "no streak yet")
	assert.Contains(t, out, "0%")
}

func TestFormatSession(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := &domain.StudySession{ID: "abc", PlanID: 1, StartedAt: start}
	assert.Contains(t, stripANSI(FormatSession(s, start.Add(25*time.Minute))), "active for plan #1 (running 25m)")

	end := start.Add(90 * time.Minute)
	s.EndedAt = &end
	assert.Contains(t, stripANSI(FormatSession(s, end)), "ended after 1h 30m")
}
