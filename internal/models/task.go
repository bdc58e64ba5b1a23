package models

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the persisted statuses.
func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusDone
}

// Task is a unit of work assigned to exactly one user.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"` // in_progress | done
	UserID      int       `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        *User     `json:"user,omitempty"` // owner, when joined
}
