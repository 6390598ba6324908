package domain

import (
	"encoding/json"
	"strings"
)

// Reflection is the learner's self-assessment attached to a task completion.
type Reflection struct {
	Confidence       int     `json:"confidence"`
	Blockers         *string `json:"blockers,omitempty"`
	TookMinutes      *int    `json:"took_minutes,omitempty"`
	WantMorePractice bool    `json:"want_more_practice"`
}

// Validate enforces confidence in [1,5] and took_minutes in [1,600].
func (r Reflection) Validate() error {
	if r.Confidence < 1 || r.Confidence > 5 {
		return invalid("confidence", "must be in [1,5], got %d", r.Confidence)
	}
	if r.TookMinutes != nil && (*r.TookMinutes < 1 || *r.TookMinutes > 600) {
		return invalid("took_minutes", "must be in [1,600], got %d", *r.TookMinutes)
	}
	return nil
}

// ActionKind discriminates the CoachAction variants.
type ActionKind string

const (
	ActionAddTask        ActionKind = "add_task"
	ActionRescheduleTask ActionKind = "reschedule_task"
	ActionTip            ActionKind = "tip"
)

// CoachAction is one adaptation proposed by the coach. The set of
// implementations is closed: AddTaskAction, RescheduleTaskAction, TipAction.
type CoachAction interface {
	Kind() ActionKind
	Validate() error
	isCoachAction()
}

// AddTaskAction proposes a new (usually small practice) task.
type AddTaskAction struct {
	Title       string  `json:"title"`
	EstMinutes  *int    `json:"est_minutes,omitempty"`
	DueInDays   *int    `json:"due_in_days,omitempty"`
	ResourceRef *string `json:"resource_ref"`
}

func (AddTaskAction) Kind() ActionKind { return ActionAddTask }
func (AddTaskAction) isCoachAction()   {}

func (a AddTaskAction) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return invalid("title", "add_task requires a title")
	}
	return nil
}

func (a AddTaskAction) MarshalJSON() ([]byte, error) {
	type alias AddTaskAction
	return json.Marshal(struct {
		Type ActionKind `json:"type"`
		alias
	}{ActionAddTask, alias(a)})
}

// RescheduleTaskAction pushes a task (or, with no target, the upcoming
// tasks) later by PushDays. A missing target is structurally valid; whether
// it is actionable is decided by whoever applies it.
type RescheduleTaskAction struct {
	TargetTaskID *int64 `json:"target_task_id,omitempty"`
	PushDays     int    `json:"push_days"`
}

func (RescheduleTaskAction) Kind() ActionKind { return ActionRescheduleTask }
func (RescheduleTaskAction) isCoachAction()   {}
func (RescheduleTaskAction) Validate() error  { return nil }

func (a RescheduleTaskAction) MarshalJSON() ([]byte, error) {
	type alias RescheduleTaskAction
	return json.Marshal(struct {
		Type ActionKind `json:"type"`
		alias
	}{ActionRescheduleTask, alias(a)})
}

// TipAction carries a practical suggestion for the learner.
type TipAction struct {
	Tip string `json:"tip"`
}

func (TipAction) Kind() ActionKind { return ActionTip }
func (TipAction) isCoachAction()   {}

func (a TipAction) Validate() error {
	if strings.TrimSpace(a.Tip) == "" {
		return invalid("tip", "tip text must not be empty")
	}
	return nil
}

func (a TipAction) MarshalJSON() ([]byte, error) {
	type alias TipAction
	return json.Marshal(struct {
		Type ActionKind `json:"type"`
		alias
	}{ActionTip, alias(a)})
}

// CoachDecision is the ordered set of actions proposed after a reflection.
type CoachDecision struct {
	Actions []CoachAction `json:"actions"`
}

// Validate checks every action.
func (d CoachDecision) Validate() error {
	for i, a := range d.Actions {
		if a == nil {
			return invalid("actions", "action %d is empty", i)
		}
		if err := a.Validate(); err != nil {
			return invalid("actions", "action %d (%s): %v", i, a.Kind(), err)
		}
	}
	return nil
}

// Tips returns the text of every tip action, in order.
func (d CoachDecision) Tips() []string {
	var tips []string
	for _, a := range d.Actions {
		if tip, ok := a.(TipAction); ok {
			tips = append(tips, tip.Tip)
		}
	}
	return tips
}

// Count returns how many actions of the given kind the decision holds.
func (d CoachDecision) Count(kind ActionKind) int {
	n := 0
	for _, a := range d.Actions {
		if a.Kind() == kind {
			n++
		}
	}
	return n
}
