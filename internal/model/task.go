package model

import "time"

// Task statuses. Any status may be set from any other; the UI encodes the
// intended flow.
const (
	StatusAssigned         = "assigned"
	StatusInProgress       = "in_progress"
	StatusAwaitingApproval = "awaiting_approval"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
)

// ValidStatus reports whether s is one of the five task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusAwaitingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	Status      string     `json:"status"`
	AssignedTo  *string    `json:"assigned_to"`
	Due         *time.Time `json:"due"`
	Icon        string     `json:"icon"`
	// Weekly repetition: 0=Mon .. 6=Sun. A task with repeat days is a
	// template: never pruned at rollover, source of daily instances.
	RepeatDays    []int      `json:"repeat_days"`
	RepeatChildID *string    `json:"repeat_child_id"`
	TemplateID    *string    `json:"template_id,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	CreatedAt     time.Time  `json:"created"`
}

// IsTemplate reports whether the task is a repeat template.
func (t *Task) IsTemplate() bool {
	return len(t.RepeatDays) > 0
}
