package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by both signup and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenIssuer
	audit  *AuditService

	// compared against when the email is unknown so both login failures cost one bcrypt run
	dummyHash string
}

func NewAuthService(users UserStore, hasher *PasswordHasher, tokens *TokenIssuer, audit *AuditService) *AuthService {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		logger.Warn("failed to precompute dummy hash", "error", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		audit:     audit,
		dummyHash: dummy,
	}
}

// Signup registers a user and issues a session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	if in.Password == "" {
		return nil, &domain.ValidationError{Field: "password", Reason: "is required"}
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, &domain.ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}

	// fast path; the unique index still decides under concurrent signups
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, user.ID, domain.AuditActionSignup, domain.AuditCategoryAuth, nil)
	logger.WithContext(ctx).Info("user signed up", "user_id", user.ID)

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Login checks credentials. Unknown email and wrong password are both reported as
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.hasher.Verify(in.Password, s.dummyHash)
		s.audit.Log(ctx, "", domain.AuditActionLoginFailed, domain.AuditCategoryAuth, map[string]any{"reason": "unknown_email"})
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.audit.Log(ctx, user.ID, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, map[string]any{"reason": "password_mismatch"})
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, user.ID, domain.AuditActionLogin, domain.AuditCategoryAuth, nil)
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Profile returns the stored user for a verified identity.
func (s *AuthService) Profile(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return s.users.GetByID(ctx, id.UserID)
}
