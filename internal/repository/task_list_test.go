package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/query"
)

func seedTask(t *testing.T, db *testDeps) *model.Task {
	t.Helper()
	task := &model.Task{Title: "Parent", Description: "D", Status: model.StatusOpened, UserID: db.user.ID}
	if err := db.tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	return task
}

type testDeps struct {
	user      *model.User
	tasks     *TaskRepository
	lists     *TaskListRepository
	storages  *TaskListStorageRepository
	revoked   *RevokedTokenRepository
	clockTick *stepClock
}

func newDeps(t *testing.T) *testDeps {
	t.Helper()
	db := newTestDB(t)
	clock := newStepClock()
	return &testDeps{
		user:      seedUser(t, NewUserRepository(db, clock.now), "owner@example.com"),
		tasks:     NewTaskRepository(db, clock.now),
		lists:     NewTaskListRepository(db, clock.now),
		storages:  NewTaskListStorageRepository(db, clock.now),
		revoked:   NewRevokedTokenRepository(db, clock.now),
		clockTick: clock,
	}
}

func TestTaskListCreateAndFilter(t *testing.T) {
	ctx := context.Background()
	deps := newDeps(t)
	task := seedTask(t, deps)

	due, _ := model.ParseDate("2024-08-10")
	other, _ := model.ParseDate("2024-09-01")

	lists := []model.TaskList{
		{Title: "Buy milk", Description: "2 litres", DueDate: due, Priority: model.PriorityHigh, Status: model.StatusOpened},
		{Title: "Call bank", Description: "about card", DueDate: other, Priority: model.PriorityLow, Status: model.StatusDone},
	}
	for i := range lists {
		lists[i].TaskID = task.ID
		if err := deps.lists.Create(ctx, &lists[i]); err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
	}

	got, err := deps.lists.GetByID(ctx, lists[0].ID)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if !got.DueDate.Equal(due) || got.Priority != model.PriorityHigh {
		t.Errorf("GetByID() = %+v", got)
	}

	tests := []struct {
		name   string
		filter query.Filter
		want   int
	}{
		{"due date", query.Filter{DueDate: &due}, 1},
		{"priority", query.Filter{Priority: model.PriorityLow}, 1},
		{"task", query.Filter{ParentID: task.ID}, 2},
		{"keyword", query.Filter{Keyword: "BANK"}, 1},
		{"keyword does not search status", query.Filter{Keyword: "done"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := deps.lists.Count(ctx, query.Build(tt.filter, TaskListFields, nil))
			if err != nil {
				t.Fatalf("Count() unexpected error: %v", err)
			}
			if n != tt.want {
				t.Errorf("Count() = %d, want %d", n, tt.want)
			}
		})
	}

	byTask, err := deps.lists.ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byTask) != 2 || byTask[0].ID != lists[1].ID {
		t.Errorf("ListByTask() = %+v", byTask)
	}
}

func TestTaskListParentChecks(t *testing.T) {
	ctx := context.Background()
	deps := newDeps(t)
	task := seedTask(t, deps)
	due, _ := model.ParseDate("2024-08-10")

	tl := &model.TaskList{Title: "x", Description: "y", DueDate: due, Priority: model.PriorityLow, Status: model.StatusOpened, TaskID: "missing"}
	if err := deps.lists.Create(ctx, tl); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("Create() error = %v, want ErrParentNotFound", err)
	}

	tl.TaskID = task.ID
	if err := deps.lists.Create(ctx, tl); err != nil {
		t.Fatal(err)
	}

	if _, err := deps.tasks.SoftDelete(ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	tl.Title = "renamed"
	if err := deps.lists.Update(ctx, tl); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("Update() under deleted task error = %v, want ErrParentNotFound", err)
	}
}

func TestTaskListStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	deps := newDeps(t)
	task := seedTask(t, deps)
	due, _ := model.ParseDate("2024-08-10")
	tl := &model.TaskList{Title: "x", Description: "y", DueDate: due, Priority: model.PriorityLow, Status: model.StatusOpened, TaskID: task.ID}
	if err := deps.lists.Create(ctx, tl); err != nil {
		t.Fatal(err)
	}

	s := &model.TaskListStorage{
		Filename:     "task-list-1.png",
		OriginalName: "receipt",
		Type:         "png",
		Path:         "task_list/" + tl.ID,
		TaskListID:   tl.ID,
		IsTest:       true,
	}
	if err := deps.storages.Create(ctx, s); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	got, err := deps.storages.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if !got.IsTest || got.OriginalName != "receipt" {
		t.Errorf("GetByID() = %+v", got)
	}

	n, err := deps.storages.Count(ctx, query.Build(query.Filter{Keyword: "RECEIPT"}, TaskListStorageFields, nil))
	if err != nil || n != 1 {
		t.Errorf("Count(keyword) = %d, %v", n, err)
	}

	got.Filename = "task-list-2.pdf"
	got.Type = "pdf"
	if err := deps.storages.Update(ctx, got); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}

	items, err := deps.storages.ListByTaskList(ctx, tl.ID)
	if err != nil || len(items) != 1 || items[0].Type != "pdf" {
		t.Errorf("ListByTaskList() = %+v, %v", items, err)
	}

	if _, err := deps.storages.SoftDelete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := deps.storages.GetByID(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v", err)
	}
}
