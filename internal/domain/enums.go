package domain

import "strings"

// TaskType classifies a study task.
type TaskType string

const (
	TaskLesson   TaskType = "lesson"
	TaskVideo    TaskType = "video"
	TaskReading  TaskType = "reading"
	TaskPractice TaskType = "practice"
	TaskProject  TaskType = "project"
	TaskQuiz     TaskType = "quiz"
)

// ValidTaskTypes is the canonical set of accepted task type strings.
var ValidTaskTypes = map[TaskType]bool{
	TaskLesson: true, TaskVideo: true, TaskReading: true,
	TaskPractice: true, TaskProject: true, TaskQuiz: true,
}

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	return ValidTaskTypes[t]
}

// ParseTaskType trims and lowercases s. The result may still be invalid.
func ParseTaskType(s string) TaskType {
	return TaskType(strings.ToLower(strings.TrimSpace(s)))
}

// Outcome records how a learner finished a task.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomePartial Outcome = "partial"
	OutcomeSkipped Outcome = "skipped"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeDone, OutcomePartial, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// TaskScope selects which stored tasks a "today" listing shows.
type TaskScope string

const (
	ScopeToday    TaskScope = "today"
	ScopeUpcoming TaskScope = "upcoming"
	ScopeAll      TaskScope = "all"
)

// Valid reports whether s is a known scope.
func (s TaskScope) Valid() bool {
	switch s {
	case ScopeToday, ScopeUpcoming, ScopeAll:
		return true
	default:
		return false
	}
}
