// Package handler adapts HTTP requests to the service layer and renders
// every outcome through the response envelope.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/tasklist/tasklist-api/internal/middleware"
	"github.com/tasklist/tasklist-api/internal/query"
	"github.com/tasklist/tasklist-api/internal/response"
	"github.com/tasklist/tasklist-api/internal/service"
	"github.com/tasklist/tasklist-api/internal/validate"
)

const maxJSONBody = 1 << 20 // 1MB

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
// It reports false after writing the error response itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Failed(w, http.StatusRequestEntityTooLarge, response.MsgBodyTooLarge)
		return false
	}
	response.Failed(w, http.StatusBadRequest, response.MsgBadBody)
	return false
}

// writeError maps a service error onto the envelope. op tags internal
// failures in the log.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if verr, ok := validate.IsValidation(err); ok {
		response.ValidationFailed(w, verr.Fields)
		return
	}
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoChange):
		response.NoContent(w)
	case service.IsAuthFailure(err):
		response.Failed(w, http.StatusUnauthorized, middleware.AuthFailureMessage(err))
	default:
		response.Internal(w, r, op, err)
	}
}

// session returns the caller's session, answering 401 if the route was
// mounted without the auth middleware.
func session(w http.ResponseWriter, r *http.Request) (service.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Failed(w, http.StatusUnauthorized, response.MsgTokenMissing)
	}
	return sess, ok
}

type reader[T any] interface {
	List(ctx context.Context, q url.Values) (query.Page[T], error)
	Get(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, id string) (T, error)
}

// resource implements the read and delete endpoints shared by every entity.
type resource[T any] struct {
	svc     reader[T]
	name    string
	msgs    response.Resource
	baseURL string
}

func (res resource[T]) list(w http.ResponseWriter, r *http.Request) {
	page, err := res.svc.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, "list "+res.name, err)
		return
	}
	response.Paginated(w, res.msgs.List, response.NewPagination(r, res.baseURL, page))
}

func (res resource[T]) show(w http.ResponseWriter, r *http.Request) {
	v, err := res.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "show "+res.name, err)
		return
	}
	response.OK(w, http.StatusOK, res.msgs.Detail, v)
}

func (res resource[T]) destroy(w http.ResponseWriter, r *http.Request) {
	v, err := res.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "delete "+res.name, err)
		return
	}
	response.OK(w, http.StatusOK, res.msgs.Deleted, v)
}
