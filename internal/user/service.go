package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/juantovo/task-manager-api/internal/logging"
)

var (
	// ErrUnknownField rejects an update touching a field outside the
	// allow-list. The whole update is discarded; nothing reaches storage.
	ErrUnknownField = errors.New("unknown field in update")
	// ErrInvalidFieldValue rejects an update whose field value cannot be
	// decoded or fails validation.
	ErrInvalidFieldValue = errors.New("invalid field value")
)

// updatableFields is the allow-list for PATCH /api/users/me.
var updatableFields = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// TaskDeleter removes all tasks owned by a user. Implemented by the task
// repository; declared here so the user package does not depend on it.
type TaskDeleter interface {
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// SessionClearer revokes all live sessions of a user. Implemented by the
// auth session repository.
type SessionClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

// GoodbyeMailer sends the account-closed notification.
type GoodbyeMailer interface {
	SendAccountClosedEmail(ctx context.Context, toEmail, name string) error
}

// Service covers the profile operations on an already-authenticated user:
// field updates, account deletion with task cascade, and the user listing.
type Service struct {
	repo     Repository
	tasks    TaskDeleter
	sessions SessionClearer
	mailer   GoodbyeMailer
	logger   *logging.Logger
}

func NewService(repo Repository, tasks TaskDeleter, sessions SessionClearer, mailer GoodbyeMailer, logger *logging.Logger) *Service {
	return &Service{
		repo:     repo,
		tasks:    tasks,
		sessions: sessions,
		mailer:   mailer,
		logger:   logger,
	}
}

// UpdateFields applies a partial update. Every incoming field name is
// checked against the allow-list before anything is written; a single
// unknown field rejects the whole update. A password change re-hashes
// before persisting.
func (s *Service) UpdateFields(ctx context.Context, u *User, fields map[string]json.RawMessage) (*User, error) {
	for name := range fields {
		if !updatableFields[name] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}

	updated := *u

	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, fmt.Errorf("%w: name", ErrInvalidFieldValue)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidFieldValue)
		}
		updated.Name = name
	}

	if raw, ok := fields["email"]; ok {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			return nil, fmt.Errorf("%w: email", ErrInvalidFieldValue)
		}
		email = strings.TrimSpace(email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", ErrInvalidFieldValue)
		}
		updated.Email = email
	}

	if raw, ok := fields["password"]; ok {
		var password string
		if err := json.Unmarshal(raw, &password); err != nil {
			return nil, fmt.Errorf("%w: password", ErrInvalidFieldValue)
		}
		if password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidFieldValue)
		}
		hash, err := HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = hash
	}

	if raw, ok := fields["age"]; ok {
		var age int
		if err := json.Unmarshal(raw, &age); err != nil {
			return nil, fmt.Errorf("%w: age", ErrInvalidFieldValue)
		}
		updated.Age = age
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes the user and everything it owns. Task deletion runs first
// and must succeed before the user record is touched, so a failure never
// leaves tasks with a dangling owner. Sessions are cleared afterwards.
func (s *Service) Delete(ctx context.Context, u *User) error {
	deleted, err := s.tasks.DeleteByOwner(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("failed to delete owned tasks: %w", err)
	}

	if err := s.repo.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted with owned tasks", "user_id", u.ID, "tasks_deleted", deleted)

	if err := s.sessions.Clear(ctx, u.ID); err != nil {
		// The account is gone; a leftover session list only holds tokens
		// that can no longer resolve to a user.
		s.logger.Warn("failed to clear sessions of deleted user", "user_id", u.ID, "error", err)
	}

	if s.mailer != nil {
		go func() {
			if err := s.mailer.SendAccountClosedEmail(context.Background(), u.Email, u.Name); err != nil {
				s.logger.Warn("failed to send account closed email", "email", u.Email, "error", err)
			}
		}()
	}

	return nil
}

// List returns every user. Serves the unauthenticated listing endpoint.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
