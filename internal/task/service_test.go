package task

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]Task
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[uuid.UUID]Task)}
}

func (r *fakeRepo) Create(ctx context.Context, t *Task) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *t
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	r.tasks[stored.ID] = stored
	return &stored, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[id]
	if !ok || stored.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	out := stored
	return &out, nil
}

func (r *fakeRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, 0)
	for _, stored := range r.tasks {
		if stored.OwnerID == ownerID {
			out = append(out, stored)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[t.ID]
	if !ok || stored.OwnerID != t.OwnerID {
		return ErrNotFound
	}
	stored.Description = t.Description
	stored.Completed = t.Completed
	r.tasks[t.ID] = stored
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[id]
	if !ok || stored.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	delete(r.tasks, id)
	return &stored, nil
}

func (r *fakeRepo) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, stored := range r.tasks {
		if stored.OwnerID == ownerID {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}

func rawFields(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &fields))
	return fields
}

func TestService_Create_OwnerComesFromCaller(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerID := uuid.New()

	created, err := svc.Create(context.Background(), ownerID, "First task", true)
	require.NoError(t, err)
	require.Equal(t, ownerID, created.OwnerID)
	require.Equal(t, "First task", created.Description)
	require.True(t, created.Completed)
}

func TestService_Get_ForeignOwnerLooksLikeMissing(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerA, ownerB := uuid.New(), uuid.New()

	created, err := svc.Create(context.Background(), ownerA, "First task", false)
	require.NoError(t, err)

	// Same error as a task that never existed.
	_, err = svc.Get(context.Background(), created.ID, ownerB)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), uuid.New(), ownerA)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_List_IsOwnerScoped(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerA, ownerB := uuid.New(), uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, ownerA, "First task", true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, ownerA, "Second task", false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, ownerB, "Other task", false)
	require.NoError(t, err)

	tasks, err := svc.List(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, got := range tasks {
		require.Equal(t, ownerA, got.OwnerID)
	}
}

func TestService_UpdateFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, "First task", false)
	require.NoError(t, err)

	updated, err := svc.UpdateFields(ctx, created.ID, ownerID, rawFields(t, `{"completed":true}`))
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Equal(t, "First task", updated.Description)
}

func TestService_UpdateFields_UnknownFieldLeavesTaskUntouched(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, "First task", false)
	require.NoError(t, err)

	_, err = svc.UpdateFields(ctx, created.ID, ownerID, rawFields(t, `{"newField":"x"}`))
	require.ErrorIs(t, err, ErrUnknownField)

	stored, err := svc.Get(ctx, created.ID, ownerID)
	require.NoError(t, err)
	require.Equal(t, "First task", stored.Description)
	require.False(t, stored.Completed)
}

func TestService_UpdateFields_ForeignOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerA, ownerB := uuid.New(), uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerA, "First task", false)
	require.NoError(t, err)

	_, err = svc.UpdateFields(ctx, created.ID, ownerB, rawFields(t, `{"completed":true}`))
	require.ErrorIs(t, err, ErrNotFound)

	stored, err := svc.Get(ctx, created.ID, ownerA)
	require.NoError(t, err)
	require.False(t, stored.Completed)
}

func TestService_Delete_ReturnsFinalState(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, "First task", true)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID, ownerID)
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID)
	require.Equal(t, "First task", deleted.Description)

	_, err = svc.Get(ctx, created.ID, ownerID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete_ForeignOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ownerA, ownerB := uuid.New(), uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerA, "First task", false)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, created.ID, ownerB)
	require.ErrorIs(t, err, ErrNotFound)

	// Still there for its real owner.
	_, err = svc.Get(ctx, created.ID, ownerA)
	require.NoError(t, err)
}
