package model

import "time"

// TaskList is a dated, prioritised checklist entry under a task.
type TaskList struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	DueDate     Date       `json:"due_date" db:"due_date"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      Status     `json:"status" db:"status"`
	TaskID      string     `json:"task_id" db:"task_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" db:"deleted_at"`

	// Populated by detail lookups only.
	Task     *Task             `json:"task,omitempty" db:"-"`
	Storages []TaskListStorage `json:"task_list_storage,omitempty" db:"-"`
}

// CreateTaskListRequest is the body of POST /task-list.
type CreateTaskListRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date" validate:"required,date"`
	Priority    string `json:"priority" validate:"required,priority"`
	Status      string `json:"status" validate:"required,status"`
	TaskID      string `json:"task_id" validate:"required,uuid"`
}

// UpdateTaskListRequest is the body of PATCH /task-list/{id}. Nil fields are left untouched.
type UpdateTaskListRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date" validate:"omitempty,date"`
	Priority    *string `json:"priority" validate:"omitempty,priority"`
	Status      *string `json:"status" validate:"omitempty,status"`
	TaskID      *string `json:"task_id" validate:"omitempty,uuid"`
}

// Normalize drops empty-string fields so they count as not supplied.
func (r *UpdateTaskListRequest) Normalize() {
	r.Title = dropEmpty(r.Title)
	r.Description = dropEmpty(r.Description)
	r.DueDate = dropEmpty(r.DueDate)
	r.Priority = dropEmpty(r.Priority)
	r.Status = dropEmpty(r.Status)
	r.TaskID = dropEmpty(r.TaskID)
}
