package domain

import (
	"encoding/json"
	"time"
)

// StoredPlan is a persisted Plan together with the request that produced it.
type StoredPlan struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Goal       string       `json:"goal"`
	Level      string       `json:"level"`
	Minutes    int          `json:"minutes"`
	Deadline   string       `json:"deadline"`
	Milestones []Milestone  `json:"milestones"`
	Tasks      []StoredTask `json:"tasks"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Milestone is a persisted milestone line.
type Milestone struct {
	ID         int64  `json:"id"`
	PlanID     int64  `json:"-"`
	OrderIndex int    `json:"order_index"`
	Text       string `json:"text"`
}

// StoredTask is a persisted Task with its identity and position.
type StoredTask struct {
	ID          int64
	PlanID      int64
	OrderIndex  int
	Title       string
	Type        TaskType
	EstMinutes  int
	DueDate     time.Time
	ResourceRef *string
}

// AsTask converts the stored row back into the plan value shape.
func (t StoredTask) AsTask() Task {
	return Task{
		Title:       t.Title,
		Type:        t.Type,
		EstMinutes:  t.EstMinutes,
		DueDate:     t.DueDate.Format(ISODate),
		ResourceRef: t.ResourceRef,
	}
}

// MarshalJSON renders the due date as a calendar date.
func (t StoredTask) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          int64    `json:"id"`
		PlanID      int64    `json:"plan_id"`
		OrderIndex  int      `json:"order_index"`
		Title       string   `json:"title"`
		Type        TaskType `json:"type"`
		EstMinutes  int      `json:"est_minutes"`
		DueDate     string   `json:"due_date"`
		ResourceRef *string  `json:"resource_ref"`
	}{t.ID, t.PlanID, t.OrderIndex, t.Title, t.Type, t.EstMinutes, t.DueDate.Format(ISODate), t.ResourceRef})
}

// TaskProgress records one completion event for a task.
type TaskProgress struct {
	ID         int64     `json:"id"`
	TaskID     int64     `json:"task_id"`
	Outcome    Outcome   `json:"outcome"`
	Notes      string    `json:"notes"`
	Rating     *int      `json:"rating"`
	SessionID  *string   `json:"session_id"`
	FinishedAt time.Time `json:"finished_at"`
}

// StudySession is a timed block of study against a plan.
type StudySession struct {
	ID        string     `json:"id"`
	PlanID    int64      `json:"plan_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// Active reports whether the session has not been ended.
func (s StudySession) Active() bool {
	return s.EndedAt == nil
}

// PlanProgress summarizes completion for a plan.
type PlanProgress struct {
	PlanID     int64 `json:"plan_id"`
	Total      int   `json:"total"`
	Done       int   `json:"done"`
	StreakDays int   `json:"streak_days"`
}
