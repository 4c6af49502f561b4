package domain

import "time"

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// TaskEvent is pushed to the owner's live connections after every mutation.
type TaskEvent struct {
	Type  string    `json:"type"`
	Task  *Task     `json:"task,omitempty"`
	Title string    `json:"title,omitempty"`
	At    time.Time `json:"at"`
}
