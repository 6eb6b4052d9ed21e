package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/query"
)

const taskColumns = "id, title, description, status, user_id, created_at, updated_at, deleted_at"

// TaskFields maps list filters onto the tasks table.
var TaskFields = query.Fields{
	Keyword: []string{"title", "description", "status"},
	Status:  "status",
	Parent:  "user_id",
	Created: "created_at",
}

// TaskRepository handles task persistence operations.
type TaskRepository struct {
	t     table
	clock Clock
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB, clock Clock) *TaskRepository {
	return &TaskRepository{t: table{db: db, name: "tasks", columns: taskColumns}, clock: clock}
}

// Create inserts a task after checking its owner is a live user.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := r.clock.now()
	task.ID = uuid.NewString()
	task.CreatedAt, task.UpdatedAt = now, now

	return withTx(ctx, r.t.db, func(tx *sqlx.Tx) error {
		if err := parentExists(ctx, tx, "users", task.UserID); err != nil {
			return err
		}
		q := tx.Rebind(`INSERT INTO tasks (id, title, description, status, user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q,
			task.ID, task.Title, task.Description, string(task.Status), task.UserID, now, now,
		); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a live task.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	task, err := get[model.Task](ctx, r.t, id)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update writes every mutable column of task and refreshes updated_at.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	now := r.clock.now()

	err := withTx(ctx, r.t.db, func(tx *sqlx.Tx) error {
		if err := parentExists(ctx, tx, "users", task.UserID); err != nil {
			return err
		}
		q := tx.Rebind(`UPDATE tasks SET title = ?, description = ?, status = ?, user_id = ?, updated_at = ?
			WHERE id = ? AND deleted_at IS NULL`)
		res, err := tx.ExecContext(ctx, q,
			task.Title, task.Description, string(task.Status), task.UserID, now, task.ID,
		)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return affected(res)
	})
	if err != nil {
		return err
	}

	task.UpdatedAt = now
	return nil
}

// SoftDelete marks a task deleted and returns the deletion time.
func (r *TaskRepository) SoftDelete(ctx context.Context, id string) (time.Time, error) {
	now := r.clock.now()
	if err := r.t.softDelete(ctx, id, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Count returns the number of live tasks matching where.
func (r *TaskRepository) Count(ctx context.Context, where query.Predicate) (int, error) {
	return r.t.count(ctx, where)
}

// Find returns one window of live tasks matching where.
func (r *TaskRepository) Find(ctx context.Context, where query.Predicate, order query.Order, limit, offset int) ([]model.Task, error) {
	return find[model.Task](ctx, r.t, where, order, limit, offset)
}

// IsParentMissing reports whether err means the referenced parent row is absent.
func IsParentMissing(err error) bool {
	return errors.Is(err, ErrParentNotFound)
}
