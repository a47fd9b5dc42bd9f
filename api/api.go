// Package api registers the HTTP routes and translates between the wire
// format and the auth/task services.
package api

import (
	"errors"
	"time"

	"github.com/sobebarali/mini-task-tracker/auth"
	"github.com/sobebarali/mini-task-tracker/httpx"
	"github.com/sobebarali/mini-task-tracker/task"
)

// Handler bundles the services the routes depend on.
type Handler struct {
	Auth   *auth.Service
	Tasks  *task.Service
	Tokens *auth.TokenManager
}

// Register mounts all routes: public auth and health endpoints, and the task
// CRUD surface behind bearer authentication.
func (h *Handler) Register(e *httpx.Echo) {
	e.GET("/health", h.health)
	e.POST("/api/auth/signup", h.signup)
	e.POST("/api/auth/login", h.login)

	tasks := e.Group("/api/tasks", auth.Middleware(h.Tokens))
	tasks.POST("", h.createTask)
	tasks.GET("", h.listTasks)
	tasks.GET("/:id", h.getTask)
	tasks.PUT("/:id", h.updateTask)
	tasks.DELETE("/:id", h.deleteTask)
}

func (h *Handler) health(c httpx.Context) error {
	return httpx.OK(c, httpx.StatusOK, map[string]string{"status": "ok"})
}

// userPayload is the wire shape of an account; the password hash never
// leaves the server.
type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserPayload(u auth.User) userPayload {
	return userPayload{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// domainError maps service errors onto envelope errors.
func domainError(err error) error {
	switch {
	case errors.Is(err, task.ErrNotFound):
		return httpx.Error(httpx.StatusNotFound, "NOT_FOUND", "task not found")
	case errors.Is(err, auth.ErrEmailInUse):
		return httpx.Error(httpx.StatusConflict, "EMAIL_IN_USE", "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUserNotFound):
		return httpx.Error(httpx.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrInvalidInput), errors.Is(err, task.ErrInvalidInput):
		return httpx.Error(httpx.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		return err
	}
}
