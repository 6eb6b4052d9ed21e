// Package response writes every API outcome in one JSON envelope.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/validate"
)

// Envelope is the wire shape of every response body.
type Envelope struct {
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	Data          any             `json:"data,omitempty"`
	Pagination    *Pagination     `json:"pagination,omitempty"`
	Errors        validate.Errors `json:"errors,omitempty"`
	Authorization *Authorization  `json:"authorization,omitempty"`
	User          *model.User     `json:"user,omitempty"`
}

// Authorization carries a freshly issued bearer token.
type Authorization struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// OK writes a success envelope. Empty data is left out.
func OK(w http.ResponseWriter, status int, msg string, data any) {
	env := Envelope{Status: StatusOK, Message: msg}
	if !empty(data) {
		env.Data = data
	}
	JSON(w, status, env)
}

// Paginated writes a success envelope whose items live in pagination.data.
func Paginated(w http.ResponseWriter, msg string, p Pagination) {
	JSON(w, http.StatusOK, Envelope{Status: StatusOK, Message: msg, Pagination: &p})
}

// Authorized writes a token and the user it belongs to.
func Authorized(w http.ResponseWriter, status int, msg string, res model.AuthResult) {
	user := res.User
	JSON(w, status, Envelope{
		Status:  StatusOK,
		Message: msg,
		User:    &user,
		Authorization: &Authorization{
			Type:      "bearer",
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt.Unix(),
		},
	})
}

// Failed writes an error envelope without field detail.
func Failed(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Status: StatusError, Message: msg})
}

// ValidationFailed writes a 422 with per-field messages.
func ValidationFailed(w http.ResponseWriter, fields validate.Errors) {
	JSON(w, http.StatusUnprocessableEntity, Envelope{
		Status:  StatusError,
		Message: validate.Message,
		Errors:  fields,
	})
}

// NoContent answers an absent target or an update that changed nothing.
// A 204 cannot carry a body, so the envelope is not written.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Internal logs err under op and writes a generic 500.
func Internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"op", op,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	Failed(w, http.StatusInternalServerError, MsgInternalError)
}

func empty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
