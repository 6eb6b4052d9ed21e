package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/response"
	"github.com/tasklist/tasklist-api/internal/service"
	"github.com/tasklist/tasklist-api/internal/validate"
)

const (
	multipartMemory = 8 << 20
	formOverhead    = 1 << 20
)

// TaskListStorageHandler handles HTTP requests for task list attachments.
type TaskListStorageHandler struct {
	resource[model.TaskListStorage]
	service *service.TaskListStorageService
	maxBody int64
}

// NewTaskListStorageHandler creates a new TaskListStorageHandler. maxUploadKB
// bounds the request body; the exact file limit is enforced by the store.
func NewTaskListStorageHandler(svc *service.TaskListStorageService, baseURL string, maxUploadKB int64) *TaskListStorageHandler {
	return &TaskListStorageHandler{
		resource: resource[model.TaskListStorage]{svc: svc, name: "task list storage", msgs: response.TaskListStorage, baseURL: baseURL},
		service:  svc,
		maxBody:  maxUploadKB*1024 + formOverhead,
	}
}

// HandleList handles GET /task-list-storage requests.
func (h *TaskListStorageHandler) HandleList(w http.ResponseWriter, r *http.Request) { h.list(w, r) }

// HandleShow handles GET /task-list-storage/{id} requests.
func (h *TaskListStorageHandler) HandleShow(w http.ResponseWriter, r *http.Request) { h.show(w, r) }

// HandleDelete handles DELETE /task-list-storage/{id} requests.
func (h *TaskListStorageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) { h.destroy(w, r) }

// HandleCreate handles multipart POST /task-list-storage requests.
func (h *TaskListStorageHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.release()

	isTest, err := form.parseBool("is_test")
	if err != nil {
		writeError(w, r, "create task list storage", err)
		return
	}

	rec, err := h.service.Create(r.Context(), model.CreateTaskListStorageRequest{
		TaskListID: r.PostFormValue("task_list_id"),
		IsTest:     isTest,
		File:       form.file,
	})
	if err != nil {
		writeError(w, r, "create task list storage", err)
		return
	}
	response.OK(w, http.StatusCreated, response.TaskListStorage.Created, rec)
}

// HandleUpdate handles multipart PATCH /task-list-storage/{id} requests.
func (h *TaskListStorageHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.release()

	req := model.UpdateTaskListStorageRequest{File: form.file}
	if vals, ok := r.PostForm["task_list_id"]; ok && len(vals) > 0 {
		req.TaskListID = &vals[0]
	}

	rec, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, "update task list storage", err)
		return
	}
	response.OK(w, http.StatusOK, response.TaskListStorage.Updated, rec)
}

type uploadForm struct {
	r       *http.Request
	file    *model.Upload
	release func()
}

// parseForm reads a multipart or urlencoded body and picks up the optional
// "file" part. It reports false after writing the error response itself.
func (h *TaskListStorageHandler) parseForm(w http.ResponseWriter, r *http.Request) (uploadForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	form := uploadForm{r: r, release: func() {}}

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Failed(w, http.StatusRequestEntityTooLarge, response.MsgBodyTooLarge)
			return uploadForm{}, false
		}
		response.Failed(w, http.StatusBadRequest, response.MsgBadBody)
		return uploadForm{}, false
	}
	if r.MultipartForm == nil {
		return form, true
	}

	f, hdr, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, true
	case err != nil:
		response.Failed(w, http.StatusBadRequest, response.MsgBadBody)
		return uploadForm{}, false
	}

	form.file = &model.Upload{Filename: hdr.Filename, Size: hdr.Size, Content: f}
	form.release = func() { f.Close() }
	return form, true
}

func (f uploadForm) parseBool(field string) (bool, error) {
	v := f.r.PostFormValue(field)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, validate.Field(field, "The "+validate.Label(field)+" field must be true or false.")
	}
	return b, nil
}
