package handler

import (
	"net/http"

	"github.com/tasklist/tasklist-api/internal/middleware"
	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/response"
	"github.com/tasklist/tasklist-api/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, "register", err)
		return
	}
	response.Authorized(w, http.StatusCreated, response.MsgRegister, res)
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}
	response.Authorized(w, http.StatusOK, response.MsgLogin, res)
}

// HandleMe handles GET /auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	response.OK(w, http.StatusOK, response.MsgMe, sess.User)
}

// HandleRefresh handles GET /auth/refresh requests. It reads the token
// itself because an expired token inside its grace window is accepted.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Refresh(r.Context(), middleware.BearerToken(r))
	if err != nil {
		writeError(w, r, "refresh token", err)
		return
	}
	response.Authorized(w, http.StatusOK, response.MsgRefresh, res)
}

// HandleLogout handles POST /auth/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := h.service.Logout(r.Context(), sess); err != nil {
		writeError(w, r, "logout", err)
		return
	}
	response.OK(w, http.StatusOK, response.MsgLogout, nil)
}
