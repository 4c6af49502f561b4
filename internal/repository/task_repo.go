package repository

import (
	"context"
	"errors"
	"fmt"

	"task_manager/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository stores tasks. Every query is scoped by owner_user_id.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, owner_user_id, owner_email, title, description, priority, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		t.ID, t.OwnerUserID, t.OwnerEmail, t.Title, t.Description, string(t.Priority), string(t.Status),
	).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTitle
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's tasks in insertion order.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, title, description, created_at, priority, status, owner_user_id::text, owner_email
		 FROM tasks
		 WHERE owner_user_id = $1
		 ORDER BY seq`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return res, nil
}

func (r *TaskRepository) GetByTitle(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id::text, title, description, created_at, priority, status, owner_user_id::text, owner_email
		 FROM tasks
		 WHERE owner_user_id = $1 AND title = $2`,
		ownerID, title,
	)
	return scanTask(row)
}

func (r *TaskRepository) ExistsByTitle(ctx context.Context, ownerID, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE owner_user_id = $1 AND title = $2)`,
		ownerID, title,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return exists, nil
}

// Update overwrites the mutable fields of the owner's task named currentTitle and
// refreshes t with the stored row.
func (r *TaskRepository) Update(ctx context.Context, ownerID, currentTitle string, t *domain.Task) error {
	row := r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $3, description = $4, priority = $5, status = $6
		 WHERE owner_user_id = $1 AND title = $2
		 RETURNING id::text, title, description, created_at, priority, status, owner_user_id::text, owner_email`,
		ownerID, currentTitle, t.Title, t.Description, string(t.Priority), string(t.Status),
	)
	updated, err := scanTask(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTitle
		}
		return err
	}
	*t = *updated
	return nil
}

func (r *TaskRepository) DeleteByTitle(ctx context.Context, ownerID, title string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE owner_user_id = $1 AND title = $2`, ownerID, title)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t                domain.Task
		priority, status string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.CreatedAt, &priority, &status, &t.OwnerUserID, &t.OwnerEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		if isUniqueViolation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	return &t, nil
}
