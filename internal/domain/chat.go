package domain

import "time"

// TaskStatus represents the lifecycle state of a background chat task.
type TaskStatus string

// Chat task lifecycle statuses. Pending and running are transient;
// done and error are terminal and never revert.
const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusError   TaskStatus = "error"
)

// Terminal reports whether the status is done or error.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusDone || s == TaskStatusError
}

// ChatMessage is one role/content pair in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatTask is one registry entry for a background agent invocation.
// Result is empty until the task is done; on error it holds a short
// human-readable diagnostic. CreatedAt is set at submission and survives
// every status transition — the janitor's retention check depends on it.
type ChatTask struct {
	ID        string
	Status    TaskStatus
	Result    string
	CreatedAt time.Time
}
