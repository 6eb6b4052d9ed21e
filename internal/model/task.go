package model

import "time"

// Task is the top-level work item owned by a user.
type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	UserID      string     `json:"user_id" db:"user_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" db:"deleted_at"`

	// Populated by detail lookups only.
	User      *User      `json:"user,omitempty" db:"-"`
	TaskLists []TaskList `json:"task_list,omitempty" db:"-"`
}

// CreateTaskRequest is the body of POST /task. UserID defaults to the caller.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status" validate:"required,status"`
	UserID      string `json:"user_id" validate:"omitempty,uuid"`
}

// UpdateTaskRequest is the body of PATCH /task/{id}. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,status"`
	UserID      *string `json:"user_id" validate:"omitempty,uuid"`
}

// Normalize drops empty-string fields so they count as not supplied.
func (r *UpdateTaskRequest) Normalize() {
	r.Title = dropEmpty(r.Title)
	r.Description = dropEmpty(r.Description)
	r.Status = dropEmpty(r.Status)
	r.UserID = dropEmpty(r.UserID)
}

func dropEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
