package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"

	"github.com/tasklist/tasklist-api/internal/crypto"
	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/repository"
	"github.com/tasklist/tasklist-api/internal/storage"
	"github.com/tasklist/tasklist-api/internal/testutil"
	"github.com/tasklist/tasklist-api/internal/validate"
)

type testEnv struct {
	db       *sqlx.DB
	clock    *testutil.Clock
	fs       afero.Fs
	users    *repository.UserRepository
	auth     *AuthService
	tasks    *TaskService
	lists    *TaskListService
	storages *TaskListStorageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	clock := testutil.NewClock()
	repoClock := repository.Clock(clock.Now)

	users := repository.NewUserRepository(db, repoClock)
	taskRepo := repository.NewTaskRepository(db, repoClock)
	listRepo := repository.NewTaskListRepository(db, repoClock)
	storageRepo := repository.NewTaskListStorageRepository(db, repoClock)
	revoked := repository.NewRevokedTokenRepository(db, repoClock)

	fs := afero.NewMemMapFs()
	issuer := crypto.NewTokenIssuer("test-secret", time.Hour, crypto.WithClock(clock.Now))

	return &testEnv{
		db:       db,
		clock:    clock,
		fs:       fs,
		users:    users,
		auth:     NewAuthService(users, issuer, revoked, 24*time.Hour),
		tasks:    NewTaskService(taskRepo, users, listRepo, time.UTC),
		lists:    NewTaskListService(listRepo, taskRepo, storageRepo, time.UTC),
		storages: NewTaskListStorageService(storageRepo, listRepo, storage.NewStoreFs(fs, 2048), time.UTC),
	}
}

func (e *testEnv) register(t *testing.T, email string) model.AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), model.RegisterRequest{
		Name:     "Tester",
		Email:    email,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	return res
}

func (e *testEnv) createTask(t *testing.T, actor model.User, title string) model.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), actor, model.CreateTaskRequest{
		Title:       title,
		Description: "D",
		Status:      "opened",
	})
	if err != nil {
		t.Fatalf("Create task unexpected error: %v", err)
	}
	return task
}

func (e *testEnv) createTaskList(t *testing.T, taskID string) model.TaskList {
	t.Helper()
	tl, err := e.lists.Create(context.Background(), model.CreateTaskListRequest{
		Title:       "Buy milk",
		Description: "2 litres",
		DueDate:     "2024-08-10",
		Priority:    "high",
		Status:      "opened",
		TaskID:      taskID,
	})
	if err != nil {
		t.Fatalf("Create task list unexpected error: %v", err)
	}
	return tl
}

func pngUpload(name string) *model.Upload {
	data := []byte("\x89PNG\r\n\x1a\n0000IHDR")
	return &model.Upload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func strPtr(s string) *string { return &s }

func wantFieldError(t *testing.T, err error, field string) {
	t.Helper()
	verr, ok := validate.IsValidation(err)
	if !ok {
		t.Fatalf("expected validation error on %s, got %v", field, err)
	}
	if !verr.Fields.Has(field) {
		t.Fatalf("expected validation error on %s, got %v", field, verr.Fields)
	}
}
