package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/validate"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusCreated, Task.Created, map[string]string{"title": "T"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	body := decode(t, rec)
	if body["status"] != StatusOK || body["message"] != Task.Created {
		t.Errorf("body = %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["title"] != "T" {
		t.Errorf("data = %v", body["data"])
	}
	for _, key := range []string{"pagination", "errors", "authorization", "user"} {
		if _, ok := body[key]; ok {
			t.Errorf("unexpected key %q", key)
		}
	}
}

func TestOK_EmptyDataOmitted(t *testing.T) {
	for name, data := range map[string]any{
		"nil":         nil,
		"empty slice": []model.Task{},
		"nil pointer": (*model.Task)(nil),
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			OK(rec, http.StatusOK, Task.List, data)
			if _, ok := decode(t, rec)["data"]; ok {
				t.Error("empty data should be omitted")
			}
		})
	}
}

func TestValidationFailed(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationFailed(rec, validate.Errors{"title": {"The title field is required."}})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != StatusError || body["message"] != validate.Message {
		t.Errorf("body = %v", body)
	}
	errs := body["errors"].(map[string]any)
	if msgs := errs["title"].([]any); len(msgs) != 1 || msgs[0] != "The title field is required." {
		t.Errorf("errors = %v", errs)
	}
}

func TestAuthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	exp := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	Authorized(rec, http.StatusOK, MsgLogin, model.AuthResult{
		Token:     "tok",
		ExpiresAt: exp,
		User:      model.User{ID: "u1", Email: "a@b.c", Password: "secret-hash"},
	})

	body := decode(t, rec)
	auth := body["authorization"].(map[string]any)
	if auth["type"] != "bearer" || auth["token"] != "tok" {
		t.Errorf("authorization = %v", auth)
	}
	if auth["expires_at"] != float64(exp.Unix()) {
		t.Errorf("expires_at = %v", auth["expires_at"])
	}
	user := body["user"].(map[string]any)
	if user["id"] != "u1" {
		t.Errorf("user = %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Error("password hash leaked")
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestInternal_HidesError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/task", nil)
	Internal(rec, req, "list tasks", errors.New("dial tcp: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decode(t, rec)
	if body["message"] != MsgInternalError {
		t.Errorf("message = %v", body["message"])
	}
}
