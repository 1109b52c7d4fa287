package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/juantovo/task-manager-api/internal/database"
)

// ErrNotFound covers both a missing task and a task owned by someone else;
// the two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("task not found")

// Repository is the persistence contract for tasks. Every lookup and
// mutation is scoped by owner.
type Repository interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*Task, error)
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// PostgresRepository persists tasks via Bun.
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *Task) (*Task, error) {
	dbTask := &database.Task{
		Description: t.Description,
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
		CreatedAt:   time.Now(),
	}

	_, err := r.db.NewInsert().
		Model(dbTask).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return mapDBTask(dbTask), nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Task, error) {
	dbTask := new(database.Task)
	err := r.db.NewSelect().
		Model(dbTask).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return mapDBTask(dbTask), nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	var dbTasks []database.Task
	err := r.db.NewSelect().
		Model(&dbTasks).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]Task, len(dbTasks))
	for i := range dbTasks {
		tasks[i] = *mapDBTask(&dbTasks[i])
	}
	return tasks, nil
}

// Update writes description and completed, scoped by id AND owner. The
// owner column is never part of the update.
func (r *PostgresRepository) Update(ctx context.Context, t *Task) error {
	result, err := r.db.NewUpdate().
		Model((*database.Task)(nil)).
		Set("description = ?", t.Description).
		Set("completed = ?", t.Completed).
		Where("id = ?", t.ID).
		Where("owner_id = ?", t.OwnerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the task and returns its final state, scoped by id AND
// owner.
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (*Task, error) {
	dbTask := new(database.Task)
	result, err := r.db.NewDelete().
		Model(dbTask).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBTask(dbTask), nil
}

// DeleteByOwner removes every task of the owner and reports how many went.
// Used by the user-deletion cascade.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks by owner: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func mapDBTask(dbt *database.Task) *Task {
	return &Task{
		ID:          dbt.ID,
		Description: dbt.Description,
		Completed:   dbt.Completed,
		OwnerID:     dbt.OwnerID,
		CreatedAt:   dbt.CreatedAt,
	}
}
