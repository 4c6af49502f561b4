package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"task_manager/internal/domain"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// TaskInput is the client-supplied part of a task. Ownership never comes from here.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
}

// TaskService implements owner-scoped task CRUD. The owner is always the verified
// identity passed in by the caller.
type TaskService struct {
	tasks  TaskStore
	events EventPublisher
	audit  *AuditService
	now    func() time.Time
}

func NewTaskService(tasks TaskStore, events EventPublisher, audit *AuditService) *TaskService {
	return &TaskService{
		tasks:  tasks,
		events: events,
		audit:  audit,
		now:    time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, owner domain.Identity, in TaskInput) (*domain.Task, error) {
	title, description, err := validateText(in.Title, in.Description)
	if err != nil {
		return nil, err
	}
	priority, err := domain.ParsePriority(in.Priority, domain.PriorityLow)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(in.Status, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	exists, err := s.tasks.ExistsByTitle(ctx, owner.UserID, title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateTitle
	}

	task := &domain.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      status,
		OwnerUserID: owner.UserID,
		OwnerEmail:  owner.Email,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, owner.UserID, domain.AuditActionTaskCreate, domain.AuditCategoryTask, map[string]any{"title": title})
	s.publish(owner.UserID, domain.TaskEvent{Type: domain.EventTaskCreated, Task: task})
	return task, nil
}

func (s *TaskService) List(ctx context.Context, owner domain.Identity) ([]*domain.Task, error) {
	return s.tasks.ListByOwner(ctx, owner.UserID)
}

// Update replaces title, description, priority and status of the owner's task named
// currentTitle. All four fields are required.
func (s *TaskService) Update(ctx context.Context, owner domain.Identity, currentTitle string, in TaskInput) (*domain.Task, error) {
	currentTitle = strings.TrimSpace(currentTitle)
	title, description, err := validateText(in.Title, in.Description)
	if err != nil {
		return nil, err
	}
	priority, err := domain.ParsePriority(in.Priority, "")
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(in.Status, "")
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetByTitle(ctx, owner.UserID, currentTitle); err != nil {
		return nil, err
	}
	if title != currentTitle {
		exists, err := s.tasks.ExistsByTitle(ctx, owner.UserID, title)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateTitle
		}
	}

	task := &domain.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      status,
	}
	if err := s.tasks.Update(ctx, owner.UserID, currentTitle, task); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, owner.UserID, domain.AuditActionTaskUpdate, domain.AuditCategoryTask,
		map[string]any{"from": currentTitle, "title": task.Title, "status": string(task.Status)})
	s.publish(owner.UserID, domain.TaskEvent{Type: domain.EventTaskUpdated, Task: task, Title: currentTitle})
	return task, nil
}

// Delete removes the owner's task by title and returns the tasks left.
func (s *TaskService) Delete(ctx context.Context, owner domain.Identity, title string) ([]*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "is required"}
	}
	if err := s.tasks.DeleteByTitle(ctx, owner.UserID, title); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, owner.UserID, domain.AuditActionTaskDelete, domain.AuditCategoryTask, map[string]any{"title": title})
	s.publish(owner.UserID, domain.TaskEvent{Type: domain.EventTaskDeleted, Title: title})

	return s.tasks.ListByOwner(ctx, owner.UserID)
}

func (s *TaskService) publish(userID string, ev domain.TaskEvent) {
	if s.events == nil {
		return
	}
	ev.At = s.now().UTC()
	s.events.Publish(userID, ev)
}

func validateText(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	switch {
	case title == "":
		return "", "", &domain.ValidationError{Field: "title", Reason: "is required"}
	case utf8.RuneCountInString(title) > maxTitleLength:
		return "", "", &domain.ValidationError{Field: "title", Reason: "must be at most 200 characters"}
	case description == "":
		return "", "", &domain.ValidationError{Field: "description", Reason: "is required"}
	case utf8.RuneCountInString(description) > maxDescriptionLength:
		return "", "", &domain.ValidationError{Field: "description", Reason: "must be at most 5000 characters"}
	}
	return title, description, nil
}
