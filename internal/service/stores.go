package service

import (
	"context"

	"task_manager/internal/domain"
)

// UserStore persists credentials. Create returns domain.ErrDuplicateEmail when the
// storage-level unique index rejects the insert; lookups return domain.ErrUserNotFound.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TaskStore persists tasks scoped by owner. Create and Update return
// domain.ErrDuplicateTitle on a (owner, title) collision; lookups, Update and
// DeleteByTitle return domain.ErrTaskNotFound when nothing matches.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	GetByTitle(ctx context.Context, ownerID, title string) (*domain.Task, error)
	ExistsByTitle(ctx context.Context, ownerID, title string) (bool, error)
	Update(ctx context.Context, ownerID, currentTitle string, t *domain.Task) error
	DeleteByTitle(ctx context.Context, ownerID, title string) error
}

type AuditStore interface {
	Create(ctx context.Context, l *domain.AuditLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

// EventPublisher fans task events out to the owner's live connections.
type EventPublisher interface {
	Publish(userID string, ev domain.TaskEvent)
}
