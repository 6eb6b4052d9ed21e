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

const storageColumns = "id, filename, original_name, type, path, task_list_id, is_test, created_at, updated_at, deleted_at"

// TaskListStorageFields maps list filters onto the task_list_storages table.
var TaskListStorageFields = query.Fields{
	Keyword: []string{"filename", "original_name"},
	Parent:  "task_list_id",
	Created: "created_at",
}

// TaskListStorageRepository handles attachment record persistence. File bytes live in blob storage.
type TaskListStorageRepository struct {
	t     table
	clock Clock
}

// NewTaskListStorageRepository creates a new TaskListStorageRepository.
func NewTaskListStorageRepository(db *sqlx.DB, clock Clock) *TaskListStorageRepository {
	return &TaskListStorageRepository{t: table{db: db, name: "task_list_storages", columns: storageColumns}, clock: clock}
}

// Create inserts an attachment record after checking its task list is live.
func (r *TaskListStorageRepository) Create(ctx context.Context, s *model.TaskListStorage) error {
	now := r.clock.now()
	s.ID = uuid.NewString()
	s.CreatedAt, s.UpdatedAt = now, now

	return withTx(ctx, r.t.db, func(tx *sqlx.Tx) error {
		if err := parentExists(ctx, tx, "task_lists", s.TaskListID); err != nil {
			return err
		}
		q := tx.Rebind(`INSERT INTO task_list_storages
			(id, filename, original_name, type, path, task_list_id, is_test, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q,
			s.ID, s.Filename, s.OriginalName, s.Type, s.Path, s.TaskListID, s.IsTest, now, now,
		); err != nil {
			return fmt.Errorf("insert task list storage: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a live attachment record.
func (r *TaskListStorageRepository) GetByID(ctx context.Context, id string) (*model.TaskListStorage, error) {
	s, err := get[model.TaskListStorage](ctx, r.t, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByTaskList returns every live attachment of a task list, newest first.
func (r *TaskListStorageRepository) ListByTaskList(ctx context.Context, taskListID string) ([]model.TaskListStorage, error) {
	where := query.Equals{Column: "task_list_id", Value: taskListID}
	return find[model.TaskListStorage](ctx, r.t, where, query.NewestFirst("created_at", "id"), 0, 0)
}

// Update writes every mutable column of s and refreshes updated_at.
func (r *TaskListStorageRepository) Update(ctx context.Context, s *model.TaskListStorage) error {
	now := r.clock.now()

	err := withTx(ctx, r.t.db, func(tx *sqlx.Tx) error {
		if err := parentExists(ctx, tx, "task_lists", s.TaskListID); err != nil {
			return err
		}
		q := tx.Rebind(`UPDATE task_list_storages SET filename = ?, original_name = ?, type = ?, path = ?,
			task_list_id = ?, is_test = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`)
		res, err := tx.ExecContext(ctx, q,
			s.Filename, s.OriginalName, s.Type, s.Path, s.TaskListID, s.IsTest, now, s.ID,
		)
		if err != nil {
			return fmt.Errorf("update task list storage: %w", err)
		}
		return affected(res)
	})
	if err != nil {
		return err
	}

	s.UpdatedAt = now
	return nil
}

// SoftDelete marks an attachment record deleted and returns the deletion time.
// The blob is kept.
func (r *TaskListStorageRepository) SoftDelete(ctx context.Context, id string) (time.Time, error) {
	now := r.clock.now()
	if err := r.t.softDelete(ctx, id, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Count returns the number of live attachments matching where.
func (r *TaskListStorageRepository) Count(ctx context.Context, where query.Predicate) (int, error) {
	return r.t.count(ctx, where)
}

// Find returns one window of live attachments matching where.
func (r *TaskListStorageRepository) Find(ctx context.Context, where query.Predicate, order query.Order, limit, offset int) ([]model.TaskListStorage, error) {
	return find[model.TaskListStorage](ctx, r.t, where, order, limit, offset)
}
