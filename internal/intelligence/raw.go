package intelligence

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexInt accepts a JSON number or numeric string. Present records whether
// the key appeared at all, even as null; Valid whether it coerced.
type flexInt struct {
	Present bool
	Valid   bool
	Value   int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	f.Present = true
	f.Valid = false
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.Valid = truncInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if i, err := strconv.Atoi(s); err == nil {
			f.Value, f.Valid = i, true
		} else if n, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value, f.Valid = truncInt(n)
		}
	}
	// Anything else (objects, bools, garbage) leaves Valid false.
	return nil
}

// Or returns the coerced value, or def when it did not coerce.
func (f flexInt) Or(def int) int {
	if !f.Valid {
		return def
	}
	return f.Value
}

// truncInt truncates n toward zero, saturating at ±MaxInt32 so callers can
// clamp out-of-range values instead of losing them.
func truncInt(n float64) (int, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(n)))), true
}

// flexString accepts a JSON string, number or bool and renders it as text.
type flexString struct {
	Value string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	f.Value = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = s
		return nil
	}
	switch data[0] {
	case '{', '[':
		return nil
	}
	f.Value = string(data)
	return nil
}

// Trimmed returns the value with surrounding whitespace removed.
func (f flexString) Trimmed() string {
	return strings.TrimSpace(f.Value)
}

// rawPlan is the backend's plan payload before normalization.
type rawPlan struct {
	Milestones []flexString `json:"milestones"`
	Tasks      []rawTask    `json:"tasks"`
}

// rawTask accepts both the day-offset shape and the legacy absolute-date shape.
type rawTask struct {
	Title       flexString `json:"title"`
	Type        flexString `json:"type"`
	EstMinutes  flexInt    `json:"est_minutes"`
	DueInDays   flexInt    `json:"due_in_days"`
	DueDate     flexString `json:"due_date"`
	ResourceRef flexString `json:"resource_ref"`
}

// rawDecision is the coach payload before it is split into typed actions.
type rawDecision struct {
	Actions []rawAction `json:"actions"`
}

type rawAction struct {
	Type         flexString `json:"type"`
	Title        flexString `json:"title"`
	EstMinutes   flexInt    `json:"est_minutes"`
	DueInDays    flexInt    `json:"due_in_days"`
	ResourceRef  flexString `json:"resource_ref"`
	TargetTaskID flexInt    `json:"target_task_id"`
	PushDays     flexInt    `json:"push_days"`
	Tip          flexString `json:"tip"`
}

func optionalString(f flexString) *string {
	s := f.Trimmed()
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(f flexInt) *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
