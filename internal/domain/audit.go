package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        string         `db:"id" bson:"_id" json:"id"`
	UserID    string         `db:"user_id" bson:"userId" json:"userId"`
	Action    string         `db:"action" bson:"action" json:"action"`
	Category  string         `db:"category" bson:"category" json:"category"`
	Details   map[string]any `db:"details" bson:"details" json:"details"`
	IP        string         `db:"ip" bson:"ip" json:"ip,omitempty"`
	UserAgent string         `db:"user_agent" bson:"userAgent" json:"userAgent,omitempty"`
	CreatedAt time.Time      `db:"created_at" bson:"createdAt" json:"createdAt"`
}

const (
	AuditCategoryAuth = "auth"
	AuditCategoryTask = "task"
)

const (
	AuditActionSignup      = "signup"
	AuditActionLogin       = "login"
	AuditActionLoginFailed = "login_failed"

	AuditActionTaskCreate = "task_create"
	AuditActionTaskUpdate = "task_update"
	AuditActionTaskDelete = "task_delete"
)
