package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/response"
	"github.com/tasklist/tasklist-api/internal/service"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	resource[model.Task]
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler. baseURL prefixes pagination links when set.
func NewTaskHandler(svc *service.TaskService, baseURL string) *TaskHandler {
	return &TaskHandler{
		resource: resource[model.Task]{svc: svc, name: "task", msgs: response.Task, baseURL: baseURL},
		service:  svc,
	}
}

// HandleList handles GET /task requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) { h.list(w, r) }

// HandleShow handles GET /task/{id} requests.
func (h *TaskHandler) HandleShow(w http.ResponseWriter, r *http.Request) { h.show(w, r) }

// HandleDelete handles DELETE /task/{id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) { h.destroy(w, r) }

// HandleCreate handles POST /task requests. The task belongs to the caller
// unless user_id names someone else.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	var req model.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), sess.User, req)
	if err != nil {
		writeError(w, r, "create task", err)
		return
	}
	response.OK(w, http.StatusCreated, response.Task.Created, task)
}

// HandleUpdate handles PATCH /task/{id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, "update task", err)
		return
	}
	response.OK(w, http.StatusOK, response.Task.Updated, task)
}
