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

var taskListParams = query.Params{ParentParam: "task_id", Fields: repository.TaskListFields}

// TaskListService handles task list business logic.
type TaskListService struct {
	lists    *repository.TaskListRepository
	tasks    *repository.TaskRepository
	storages *repository.TaskListStorageRepository
	loc      *time.Location
}

// NewTaskListService creates a new TaskListService.
func NewTaskListService(lists *repository.TaskListRepository, tasks *repository.TaskRepository, storages *repository.TaskListStorageRepository, loc *time.Location) *TaskListService {
	return &TaskListService{lists: lists, tasks: tasks, storages: storages, loc: loc}
}

// List returns one page of live task lists matching the query parameters, newest first.
func (s *TaskListService) List(ctx context.Context, q url.Values) (query.Page[model.TaskList], error) {
	l, err := query.ParseList(q, taskListParams)
	if err != nil {
		return query.Page[model.TaskList]{}, err
	}
	where := query.Build(l.Filter, repository.TaskListFields, s.loc)
	return query.Paginate[model.TaskList](ctx, s.lists, where, query.NewestFirst("created_at", "id"), l.Page, l.Size)
}

// Get returns a live task list with its task and live attachments.
func (s *TaskListService) Get(ctx context.Context, id string) (model.TaskList, error) {
	tl, err := s.find(ctx, id)
	if err != nil {
		return model.TaskList{}, err
	}

	task, err := s.tasks.GetByID(ctx, tl.TaskID)
	switch {
	case err == nil:
		tl.Task = task
	case !errors.Is(err, repository.ErrNotFound):
		return model.TaskList{}, err
	}

	storages, err := s.storages.ListByTaskList(ctx, tl.ID)
	if err != nil {
		return model.TaskList{}, err
	}
	tl.Storages = storages

	return *tl, nil
}

// Create stores a new task list under an existing task.
func (s *TaskListService) Create(ctx context.Context, req model.CreateTaskListRequest) (model.TaskList, error) {
	if err := validate.Struct(req); err != nil {
		return model.TaskList{}, err
	}

	due, err := model.ParseDate(req.DueDate)
	if err != nil {
		return model.TaskList{}, validate.Field("due_date", "The due date field must be a valid date.")
	}

	tl := model.TaskList{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    model.Priority(req.Priority),
		Status:      model.Status(req.Status),
		TaskID:      req.TaskID,
	}

	if err := s.lists.Create(ctx, &tl); err != nil {
		if repository.IsParentMissing(err) {
			return model.TaskList{}, errUnknownTask()
		}
		return model.TaskList{}, fmt.Errorf("create task list: %w", err)
	}
	return tl, nil
}

func errUnknownTask() error {
	return validate.Field("task_id", "The selected task id is invalid.")
}

// Update merges the supplied fields into the task list. Supplying nothing new is ErrNoChange.
func (s *TaskListService) Update(ctx context.Context, id string, req model.UpdateTaskListRequest) (model.TaskList, error) {
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return model.TaskList{}, err
	}

	tl, err := s.find(ctx, id)
	if err != nil {
		return model.TaskList{}, err
	}

	changed := 0
	changed += apply(&tl.Title, req.Title)
	changed += apply(&tl.Description, req.Description)
	changed += applyAs(&tl.Priority, req.Priority)
	changed += applyAs(&tl.Status, req.Status)
	changed += apply(&tl.TaskID, req.TaskID)
	if req.DueDate != nil {
		due, err := model.ParseDate(*req.DueDate)
		if err != nil {
			return model.TaskList{}, validate.Field("due_date", "The due date field must be a valid date.")
		}
		if !due.Equal(tl.DueDate) {
			tl.DueDate = due
			changed++
		}
	}
	if changed == 0 {
		return model.TaskList{}, ErrNoChange
	}

	if err := s.lists.Update(ctx, tl); err != nil {
		switch {
		case repository.IsParentMissing(err):
			return model.TaskList{}, errUnknownTask()
		case errors.Is(err, repository.ErrNotFound):
			return model.TaskList{}, ErrNotFound
		}
		return model.TaskList{}, fmt.Errorf("update task list: %w", err)
	}
	return *tl, nil
}

// Delete soft-deletes the task list and returns its last state.
func (s *TaskListService) Delete(ctx context.Context, id string) (model.TaskList, error) {
	tl, err := s.find(ctx, id)
	if err != nil {
		return model.TaskList{}, err
	}

	at, err := s.lists.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.TaskList{}, ErrNotFound
		}
		return model.TaskList{}, fmt.Errorf("delete task list: %w", err)
	}

	tl.DeletedAt = &at
	tl.UpdatedAt = at
	return *tl, nil
}

func (s *TaskListService) find(ctx context.Context, id string) (*model.TaskList, error) {
	tl, err := s.lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task list: %w", err)
	}
	return tl, nil
}
