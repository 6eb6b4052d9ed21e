package model

import (
	"io"
	"time"
)

// TaskListStorage is a file attached to a task list. The bytes live in blob storage under Path/Filename.
type TaskListStorage struct {
	ID           string     `json:"id" db:"id"`
	Filename     string     `json:"filename" db:"filename"`
	OriginalName string     `json:"original_name" db:"original_name"`
	Type         string     `json:"type" db:"type"`
	Path         string     `json:"path" db:"path"`
	TaskListID   string     `json:"task_list_id" db:"task_list_id"`
	IsTest       bool       `json:"is_test" db:"is_test"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" db:"deleted_at"`

	// Populated by detail lookups only.
	TaskList *TaskList `json:"task_list,omitempty" db:"-"`
}

// Upload is a file received from a multipart request.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// CreateTaskListStorageRequest carries the form fields of POST /task-list-storage.
type CreateTaskListStorageRequest struct {
	TaskListID string  `json:"task_list_id" validate:"required,uuid"`
	IsTest     bool    `json:"is_test"`
	File       *Upload `json:"-"`
}

// UpdateTaskListStorageRequest carries the form fields of PATCH /task-list-storage/{id}.
type UpdateTaskListStorageRequest struct {
	TaskListID *string `json:"task_list_id" validate:"omitempty,uuid"`
	File       *Upload `json:"-"`
}

// Normalize drops empty-string fields so they count as not supplied.
func (r *UpdateTaskListStorageRequest) Normalize() {
	r.TaskListID = dropEmpty(r.TaskListID)
}
