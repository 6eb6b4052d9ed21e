package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tasklist/tasklist-api/internal/response"
	"github.com/tasklist/tasklist-api/internal/service"
)

type contextKey string

const sessionKey contextKey = "session"

// Authenticator resolves a bearer token to a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (service.Session, error)
}

// Auth returns middleware that requires a valid Bearer token and stores the
// resolved session in the request context.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := auth.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				if !service.IsAuthFailure(err) {
					response.Internal(w, r, "authenticate", err)
					return
				}
				response.Failed(w, http.StatusUnauthorized, AuthFailureMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token of an "Authorization: Bearer" header, or ""
// when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionFromContext extracts the authenticated session from the request context.
func SessionFromContext(ctx context.Context) (service.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(service.Session)
	return sess, ok
}

// AuthFailureMessage is the client-facing message for an auth failure kind.
func AuthFailureMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenMissing):
		return response.MsgTokenMissing
	case errors.Is(err, service.ErrTokenExpired):
		return response.MsgTokenExpired
	case errors.Is(err, service.ErrTokenInvalid):
		return response.MsgTokenInvalid
	case errors.Is(err, service.ErrUserNotFound):
		return response.MsgUserNotFound
	default:
		return response.MsgUnauthorized
	}
}
