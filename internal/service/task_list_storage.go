package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/query"
	"github.com/tasklist/tasklist-api/internal/repository"
	"github.com/tasklist/tasklist-api/internal/storage"
	"github.com/tasklist/tasklist-api/internal/validate"
)

var storageParams = query.Params{ParentParam: "task_list_id", Fields: repository.TaskListStorageFields}

// TaskListStorageService handles attachment business logic. Records live in
// the database and bytes in blob storage; the two are kept consistent by
// removing whichever blob a failed or superseded write leaves behind.
type TaskListStorageService struct {
	storages *repository.TaskListStorageRepository
	lists    *repository.TaskListRepository
	blobs    *storage.Store
	loc      *time.Location
}

// NewTaskListStorageService creates a new TaskListStorageService.
func NewTaskListStorageService(storages *repository.TaskListStorageRepository, lists *repository.TaskListRepository, blobs *storage.Store, loc *time.Location) *TaskListStorageService {
	return &TaskListStorageService{storages: storages, lists: lists, blobs: blobs, loc: loc}
}

// List returns one page of live attachments matching the query parameters, newest first.
func (s *TaskListStorageService) List(ctx context.Context, q url.Values) (query.Page[model.TaskListStorage], error) {
	l, err := query.ParseList(q, storageParams)
	if err != nil {
		return query.Page[model.TaskListStorage]{}, err
	}
	where := query.Build(l.Filter, repository.TaskListStorageFields, s.loc)
	return query.Paginate[model.TaskListStorage](ctx, s.storages, where, query.NewestFirst("created_at", "id"), l.Page, l.Size)
}

// Get returns a live attachment with its task list.
func (s *TaskListStorageService) Get(ctx context.Context, id string) (model.TaskListStorage, error) {
	rec, err := s.find(ctx, id)
	if err != nil {
		return model.TaskListStorage{}, err
	}

	tl, err := s.lists.GetByID(ctx, rec.TaskListID)
	switch {
	case err == nil:
		rec.TaskList = tl
	case !errors.Is(err, repository.ErrNotFound):
		return model.TaskListStorage{}, err
	}

	return *rec, nil
}

// Create stores the uploaded file and its record.
func (s *TaskListStorageService) Create(ctx context.Context, req model.CreateTaskListStorageRequest) (model.TaskListStorage, error) {
	errs := validate.Errors{}
	if err := validate.Struct(req); err != nil {
		verr, ok := validate.IsValidation(err)
		if !ok {
			return model.TaskListStorage{}, err
		}
		errs = verr.Fields
	}
	if req.File == nil {
		errs.Add("file", "The file field is required.")
	}
	if err := errs.Err(); err != nil {
		return model.TaskListStorage{}, err
	}

	if err := s.checkTaskList(ctx, req.TaskListID); err != nil {
		return model.TaskListStorage{}, err
	}

	obj, err := s.put(req.TaskListID, req.File)
	if err != nil {
		return model.TaskListStorage{}, err
	}

	rec := model.TaskListStorage{
		Filename:     obj.Filename,
		OriginalName: obj.OriginalName,
		Type:         obj.Ext,
		Path:         obj.Dir,
		TaskListID:   req.TaskListID,
		IsTest:       req.IsTest,
	}

	if err := s.storages.Create(ctx, &rec); err != nil {
		s.discard(obj.Key())
		if repository.IsParentMissing(err) {
			return model.TaskListStorage{}, errUnknownTaskList()
		}
		return model.TaskListStorage{}, fmt.Errorf("create task list storage: %w", err)
	}
	return rec, nil
}

// Update moves the attachment to another task list and/or replaces its file.
// The previous blob is removed only once the record points at the new one.
func (s *TaskListStorageService) Update(ctx context.Context, id string, req model.UpdateTaskListStorageRequest) (model.TaskListStorage, error) {
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return model.TaskListStorage{}, err
	}

	rec, err := s.find(ctx, id)
	if err != nil {
		return model.TaskListStorage{}, err
	}

	changed := apply(&rec.TaskListID, req.TaskListID)
	if changed == 0 && req.File == nil {
		return model.TaskListStorage{}, ErrNoChange
	}
	if changed > 0 {
		if err := s.checkTaskList(ctx, rec.TaskListID); err != nil {
			return model.TaskListStorage{}, err
		}
	}

	var oldKey, newKey string
	if req.File != nil {
		obj, err := s.put(rec.TaskListID, req.File)
		if err != nil {
			return model.TaskListStorage{}, err
		}
		oldKey, newKey = path.Join(rec.Path, rec.Filename), obj.Key()
		rec.Filename = obj.Filename
		rec.OriginalName = obj.OriginalName
		rec.Type = obj.Ext
		rec.Path = obj.Dir
	}

	if err := s.storages.Update(ctx, rec); err != nil {
		if newKey != "" {
			s.discard(newKey)
		}
		switch {
		case repository.IsParentMissing(err):
			return model.TaskListStorage{}, errUnknownTaskList()
		case errors.Is(err, repository.ErrNotFound):
			return model.TaskListStorage{}, ErrNotFound
		}
		return model.TaskListStorage{}, fmt.Errorf("update task list storage: %w", err)
	}

	if oldKey != "" {
		s.discard(oldKey)
	}
	return *rec, nil
}

// Delete soft-deletes the attachment record and returns its last state. The blob is kept.
func (s *TaskListStorageService) Delete(ctx context.Context, id string) (model.TaskListStorage, error) {
	rec, err := s.find(ctx, id)
	if err != nil {
		return model.TaskListStorage{}, err
	}

	at, err := s.storages.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.TaskListStorage{}, ErrNotFound
		}
		return model.TaskListStorage{}, fmt.Errorf("delete task list storage: %w", err)
	}

	rec.DeletedAt = &at
	rec.UpdatedAt = at
	return *rec, nil
}

func (s *TaskListStorageService) find(ctx context.Context, id string) (*model.TaskListStorage, error) {
	rec, err := s.storages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task list storage: %w", err)
	}
	return rec, nil
}

// checkTaskList fails fast before any bytes are written.
func (s *TaskListStorageService) checkTaskList(ctx context.Context, id string) error {
	if _, err := s.lists.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errUnknownTaskList()
		}
		return fmt.Errorf("get task list: %w", err)
	}
	return nil
}

func (s *TaskListStorageService) put(taskListID string, file *model.Upload) (storage.Object, error) {
	obj, err := s.blobs.Put(path.Join("task_list", taskListID), file.Filename, file.Content)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return storage.Object{}, validate.Field("file", "The file field must be a file of type: "+storage.AllowedTypes+".")
	case errors.Is(err, storage.ErrFileTooLarge):
		return storage.Object{}, validate.Field("file", fmt.Sprintf("The file field must not be greater than %d kilobytes.", s.blobs.MaxKB()))
	case errors.Is(err, storage.ErrEmptyFile):
		return storage.Object{}, validate.Field("file", "The file field is required.")
	case err != nil:
		return storage.Object{}, fmt.Errorf("store file: %w", err)
	}
	return obj, nil
}

func (s *TaskListStorageService) discard(key string) {
	if err := s.blobs.Delete(key); err != nil {
		slog.Warn("removing blob failed", "key", key, "error", err)
	}
}

func errUnknownTaskList() error {
	return validate.Field("task_list_id", "The selected task list id is invalid.")
}
