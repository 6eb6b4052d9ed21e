package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/query"
	"github.com/tasklist/tasklist-api/internal/repository"
	"github.com/tasklist/tasklist-api/internal/validate"
)

var taskParams = query.Params{ParentParam: "user_id", Fields: repository.TaskFields}

// TaskService handles task business logic.
type TaskService struct {
	tasks *repository.TaskRepository
	users *repository.UserRepository
	lists *repository.TaskListRepository
	loc   *time.Location
}

// NewTaskService creates a new TaskService. loc is the timezone list date filters are read in.
func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository, lists *repository.TaskListRepository, loc *time.Location) *TaskService {
	return &TaskService{tasks: tasks, users: users, lists: lists, loc: loc}
}

// List returns one page of live tasks matching the query parameters, newest first.
func (s *TaskService) List(ctx context.Context, q url.Values) (query.Page[model.Task], error) {
	l, err := query.ParseList(q, taskParams)
	if err != nil {
		return query.Page[model.Task]{}, err
	}
	where := query.Build(l.Filter, repository.TaskFields, s.loc)
	return query.Paginate[model.Task](ctx, s.tasks, where, query.NewestFirst("created_at", "id"), l.Page, l.Size)
}

// Get returns a live task with its owner and live task lists.
func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	owner, err := s.users.GetByID(ctx, task.UserID)
	switch {
	case err == nil:
		task.User = owner
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.Task{}, err
	}

	lists, err := s.lists.ListByTask(ctx, task.ID)
	if err != nil {
		return model.Task{}, err
	}
	task.TaskLists = lists

	return *task, nil
}

// Create stores a new task. The owner defaults to the caller.
func (s *TaskService) Create(ctx context.Context, actor model.User, req model.CreateTaskRequest) (model.Task, error) {
	if err := validate.Struct(req); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.Status(req.Status),
		UserID:      req.UserID,
	}
	if task.UserID == "" {
		task.UserID = actor.ID
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		if repository.IsParentMissing(err) {
			return model.Task{}, validate.Field("user_id", "The selected user id is invalid.")
		}
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update merges the supplied fields into the task. Supplying nothing new is ErrNoChange.
func (s *TaskService) Update(ctx context.Context, id string, req model.UpdateTaskRequest) (model.Task, error) {
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return model.Task{}, err
	}

	task, err := s.find(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	changed := 0
	changed += apply(&task.Title, req.Title)
	changed += apply(&task.Description, req.Description)
	changed += applyAs(&task.Status, req.Status)
	changed += apply(&task.UserID, req.UserID)
	if changed == 0 {
		return model.Task{}, ErrNoChange
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		switch {
		case repository.IsParentMissing(err):
			return model.Task{}, validate.Field("user_id", "The selected user id is invalid.")
		case errors.Is(err, repository.ErrNotFound):
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return *task, nil
}

// Delete soft-deletes the task and returns its last state.
func (s *TaskService) Delete(ctx context.Context, id string) (model.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	at, err := s.tasks.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("delete task: %w", err)
	}

	task.DeletedAt = &at
	task.UpdatedAt = at
	return *task, nil
}

func (s *TaskService) find(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}
