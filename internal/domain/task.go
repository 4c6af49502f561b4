package domain

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

type Task struct {
	ID          string    `db:"id" bson:"_id" json:"id"`
	Title       string    `db:"title" bson:"title" json:"title"`
	Description string    `db:"description" bson:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
	Priority    Priority  `db:"priority" bson:"priority" json:"priority"`
	Status      Status    `db:"status" bson:"status" json:"status"`
	OwnerUserID string    `db:"owner_user_id" bson:"ownerUserId" json:"ownerUserId"`
	OwnerEmail  string    `db:"owner_email" bson:"ownerEmail" json:"ownerEmail"`
}

// ParsePriority returns def for an empty value.
func ParsePriority(s string, def Priority) (Priority, error) {
	switch strings.TrimSpace(s) {
	case "":
		if def == "" {
			return "", &ValidationError{Field: "priority", Reason: "is required"}
		}
		return def, nil
	case string(PriorityLow):
		return PriorityLow, nil
	case string(PriorityMedium):
		return PriorityMedium, nil
	case string(PriorityHigh):
		return PriorityHigh, nil
	}
	return "", &ValidationError{Field: "priority", Reason: "must be one of Low, Medium, High"}
}

// ParseStatus accepts "InProgress" as an alias of "In Progress". Returns def for an empty value.
func ParseStatus(s string, def Status) (Status, error) {
	switch strings.TrimSpace(s) {
	case "":
		if def == "" {
			return "", &ValidationError{Field: "status", Reason: "is required"}
		}
		return def, nil
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusInProgress), "InProgress":
		return StatusInProgress, nil
	case string(StatusCompleted):
		return StatusCompleted, nil
	}
	return "", &ValidationError{Field: "status", Reason: "must be one of Pending, In Progress, Completed"}
}
