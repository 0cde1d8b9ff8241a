package domain

import "time"

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "OPEN"
	TaskStatusDone TaskStatus = "DONE"
)

// TaskPriority enumerates task urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// Task is a follow-up assigned to a user.
type Task struct {
	ID          string
	Title       string
	Description string
	RelatedType EntityType
	RelatedID   string
	AssignedTo  string
	DueDate     time.Time
	Status      TaskStatus
	Priority    TaskPriority
	CreatedAt   time.Time
}

// Overdue reports whether an open task is past its due date.
func (t Task) Overdue(now time.Time) bool {
	return t.Status == TaskStatusOpen && !t.DueDate.IsZero() && t.DueDate.Before(now)
}
