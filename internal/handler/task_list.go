package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/response"
	"github.com/tasklist/tasklist-api/internal/service"
)

// TaskListHandler handles HTTP requests for task lists.
type TaskListHandler struct {
	resource[model.TaskList]
	service *service.TaskListService
}

// NewTaskListHandler creates a new TaskListHandler.
func NewTaskListHandler(svc *service.TaskListService, baseURL string) *TaskListHandler {
	return &TaskListHandler{
		resource: resource[model.TaskList]{svc: svc, name: "task list", msgs: response.TaskList, baseURL: baseURL},
		service:  svc,
	}
}

// HandleList handles GET /task-list requests.
func (h *TaskListHandler) HandleList(w http.ResponseWriter, r *http.Request) { h.list(w, r) }

// HandleShow handles GET /task-list/{id} requests.
func (h *TaskListHandler) HandleShow(w http.ResponseWriter, r *http.Request) { h.show(w, r) }

// HandleDelete handles DELETE /task-list/{id} requests.
func (h *TaskListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) { h.destroy(w, r) }

// HandleCreate handles POST /task-list requests.
func (h *TaskListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tl, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, "create task list", err)
		return
	}
	response.OK(w, http.StatusCreated, response.TaskList.Created, tl)
}

// HandleUpdate handles PATCH /task-list/{id} requests.
func (h *TaskListHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTaskListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tl, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, "update task list", err)
		return
	}
	response.OK(w, http.StatusOK, response.TaskList.Updated, tl)
}
