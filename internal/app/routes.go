package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tasklist/tasklist-api/internal/handler"
	"github.com/tasklist/tasklist-api/internal/middleware"
	"github.com/tasklist/tasklist-api/internal/service"
)

type handlers struct {
	auth     *handler.AuthHandler
	task     *handler.TaskHandler
	taskList *handler.TaskListHandler
	storage  *handler.TaskListStorageHandler
}

type crudHandler interface {
	HandleList(http.ResponseWriter, *http.Request)
	HandleCreate(http.ResponseWriter, *http.Request)
	HandleShow(http.ResponseWriter, *http.Request)
	HandleUpdate(http.ResponseWriter, *http.Request)
	HandleDelete(http.ResponseWriter, *http.Request)
}

func (a *App) routes(authSvc *service.AuthService, h handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	requireAuth := middleware.Auth(authSvc)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(a.done, 5, 10))
			r.Post("/register", h.auth.HandleRegister)
			r.Post("/login", h.auth.HandleLogin)
		})

		r.Get("/refresh", h.auth.HandleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", h.auth.HandleMe)
			r.Post("/logout", h.auth.HandleLogout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		mount(r, "/task", h.task)
		mount(r, "/task-list", h.taskList)
		mount(r, "/task-list-storage", h.storage)
	})

	return r
}

func mount(r chi.Router, path string, h crudHandler) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleShow)
		r.Patch("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}
