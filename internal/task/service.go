package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrUnknownField rejects an update touching a field outside the
	// allow-list; the record stays untouched.
	ErrUnknownField = errors.New("unknown field in update")
	// ErrInvalidFieldValue rejects a field value that cannot be decoded.
	ErrInvalidFieldValue = errors.New("invalid field value")
)

// updatableFields is the allow-list for PATCH /api/tasks/{id}.
var updatableFields = map[string]bool{
	"description": true,
	"completed":   true,
}

// Service owns the task operations. Every call takes the authenticated
// owner id and conjoins it into the storage filter, so a task of another
// owner behaves exactly like a task that does not exist.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new task for the owner. The owner comes from the
// authenticated identity, never from client input.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*Task, error) {
	return s.repo.Create(ctx, &Task{
		Description: description,
		Completed:   completed,
		OwnerID:     ownerID,
	})
}

// Get returns the task if it exists and belongs to the owner.
func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

// List returns all tasks of the owner.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdateFields applies a partial update to an owned task. Field names are
// validated against the allow-list before the task is even loaded.
func (s *Service) UpdateFields(ctx context.Context, id, ownerID uuid.UUID, fields map[string]json.RawMessage) (*Task, error) {
	for name := range fields {
		if !updatableFields[name] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}

	existing, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	updated := *existing

	if raw, ok := fields["description"]; ok {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			return nil, fmt.Errorf("%w: description", ErrInvalidFieldValue)
		}
		updated.Description = description
	}

	if raw, ok := fields["completed"]; ok {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			return nil, fmt.Errorf("%w: completed", ErrInvalidFieldValue)
		}
		updated.Completed = completed
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes an owned task and returns its final state.
func (s *Service) Delete(ctx context.Context, id, ownerID uuid.UUID) (*Task, error) {
	return s.repo.Delete(ctx, id, ownerID)
}
