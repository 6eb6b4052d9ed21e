package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/query"
)

const taskListColumns = "id, title, description, due_date, priority, status, task_id, created_at, updated_at, deleted_at"

// TaskListFields maps list filters onto the task_lists table.
var TaskListFields = query.Fields{
	Keyword:  []string{"title", "description"},
	Status:   "status",
	Priority: "priority",
	DueDate:  "due_date",
	Parent:   "task_id",
	Created:  "created_at",
}

// TaskListRepository handles task list persistence operations.
type TaskListRepository struct {
	t     table
	clock Clock
}

// NewTaskListRepository creates a new TaskListRepository.
func NewTaskListRepository(db *sqlx.DB, clock Clock) *TaskListRepository {
	return &TaskListRepository{t: table{db: db, name: "task_lists", columns: taskListColumns}, clock: clock}
}

// Create inserts a task list after checking its task is live.
func (r *TaskListRepository) Create(ctx context.Context, tl *model.TaskList) error {
	now := r.clock.now()
	tl.ID = uuid.NewString()
	tl.CreatedAt, tl.UpdatedAt = now, now

	return withTx(ctx, r.t.db, func(tx *sqlx.Tx) error {
		if err := parentExists(ctx, tx, "tasks", tl.TaskID); err != nil {
			return err
		}
		q := tx.Rebind(`INSERT INTO task_lists (id, title, description, due_date, priority, status, task_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q,
			tl.ID, tl.Title, tl.Description, tl.DueDate.String(), string(tl.Priority), string(tl.Status), tl.TaskID, now, now,
		); err != nil {
			return fmt.Errorf("insert task list: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a live task list.
func (r *TaskListRepository) GetByID(ctx context.Context, id string) (*model.TaskList, error) {
	tl, err := get[model.TaskList](ctx, r.t, id)
	if err != nil {
		return nil, err
	}
	return &tl, nil
}

// ListByTask returns every live task list of a task, newest first.
func (r *TaskListRepository) ListByTask(ctx context.Context, taskID string) ([]model.TaskList, error) {
	where := query.Equals{Column: "task_id", Value: taskID}
	return find[model.TaskList](ctx, r.t, where, query.NewestFirst("created_at", "id"), 0, 0)
}

// Update writes every mutable column of tl and refreshes updated_at.
func (r *TaskListRepository) Update(ctx context.Context, tl *model.TaskList) error {
	now := r.clock.now()

	err := withTx(ctx, r.t.db, func(tx *sqlx.Tx) error {
		if err := parentExists(ctx, tx, "tasks", tl.TaskID); err != nil {
			return err
		}
		q := tx.Rebind(`UPDATE task_lists SET title = ?, description = ?, due_date = ?, priority = ?, status = ?,
			task_id = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`)
		res, err := tx.ExecContext(ctx, q,
			tl.Title, tl.Description, tl.DueDate.String(), string(tl.Priority), string(tl.Status), tl.TaskID, now, tl.ID,
		)
		if err != nil {
			return fmt.Errorf("update task list: %w", err)
		}
		return affected(res)
	})
	if err != nil {
		return err
	}

	tl.UpdatedAt = now
	return nil
}

// SoftDelete marks a task list deleted and returns the deletion time.
func (r *TaskListRepository) SoftDelete(ctx context.Context, id string) (time.Time, error) {
	now := r.clock.now()
	if err := r.t.softDelete(ctx, id, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Count returns the number of live task lists matching where.
func (r *TaskListRepository) Count(ctx context.Context, where query.Predicate) (int, error) {
	return r.t.count(ctx, where)
}

// Find returns one window of live task lists matching where.
func (r *TaskListRepository) Find(ctx context.Context, where query.Predicate, order query.Order, limit, offset int) ([]model.TaskList, error) {
	return find[model.TaskList](ctx, r.t, where, order, limit, offset)
}
