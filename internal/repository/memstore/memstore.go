// Package memstore is a process-local store for development and tests. It enforces the
// same uniqueness rules as the database indexes under a single mutex.
package memstore

import (
	"context"
	"sync"
	"time"

	"task_manager/internal/domain"

	"github.com/google/uuid"
)

type Store struct {
	mu     sync.RWMutex
	users  map[string]*domain.User // by id
	emails map[string]string       // email -> user id
	tasks  []*domain.Task          // insertion order
	audit  []*domain.AuditLog
	now    func() time.Time
}

func New() *Store {
	return &Store{
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
		now:    time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Users() *UserStore  { return &UserStore{s} }
func (s *Store) Tasks() *TaskStore  { return &TaskStore{s} }
func (s *Store) Audit() *AuditStore { return &AuditStore{s} }

type UserStore struct{ s *Store }

func (u *UserStore) Create(_ context.Context, user *domain.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[user.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = s.now().UTC()
	cp := *user
	s.users[cp.ID] = &cp
	s.emails[cp.Email] = cp.ID
	return nil
}

func (u *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (u *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (u *UserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.emails[email]
	return ok, nil
}

type TaskStore struct{ s *Store }

func (ts *TaskStore) Create(_ context.Context, t *domain.Task) error {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(t.OwnerUserID, t.Title) >= 0 {
		return domain.ErrDuplicateTitle
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = s.now().UTC()
	cp := *t
	s.tasks = append(s.tasks, &cp)
	return nil
}

func (ts *TaskStore) ListByOwner(_ context.Context, ownerID string) ([]*domain.Task, error) {
	s := ts.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerUserID == ownerID {
			cp := *t
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (ts *TaskStore) GetByTitle(_ context.Context, ownerID, title string) (*domain.Task, error) {
	s := ts.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(ownerID, title)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	cp := *s.tasks[i]
	return &cp, nil
}

func (ts *TaskStore) ExistsByTitle(_ context.Context, ownerID, title string) (bool, error) {
	s := ts.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indexOf(ownerID, title) >= 0, nil
}

func (ts *TaskStore) Update(_ context.Context, ownerID, currentTitle string, t *domain.Task) error {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ownerID, currentTitle)
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	if t.Title != currentTitle && s.indexOf(ownerID, t.Title) >= 0 {
		return domain.ErrDuplicateTitle
	}

	stored := s.tasks[i]
	stored.Title = t.Title
	stored.Description = t.Description
	stored.Priority = t.Priority
	stored.Status = t.Status
	*t = *stored
	return nil
}

func (ts *TaskStore) DeleteByTitle(_ context.Context, ownerID, title string) error {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ownerID, title)
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(ownerID, title string) int {
	for i, t := range s.tasks {
		if t.OwnerUserID == ownerID && t.Title == title {
			return i
		}
	}
	return -1
}

type AuditStore struct{ s *Store }

func (a *AuditStore) Create(_ context.Context, l *domain.AuditLog) error {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = s.now().UTC()
	cp := *l
	s.audit = append(s.audit, &cp)
	return nil
}

// ListByUser returns the newest entries first.
func (a *AuditStore) ListByUser(_ context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	s := a.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*domain.AuditLog, 0)
	for i := len(s.audit) - 1; i >= 0 && len(res) < limit; i-- {
		if s.audit[i].UserID == userID {
			cp := *s.audit[i]
			res = append(res, &cp)
		}
	}
	return res, nil
}
