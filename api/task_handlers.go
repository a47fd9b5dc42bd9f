package api

import (
	"fmt"
	"time"

	"github.com/sobebarali/mini-task-tracker/auth"
	"github.com/sobebarali/mini-task-tracker/httpx"
	"github.com/sobebarali/mini-task-tracker/task"
)

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"dueDate"`
}

func (h *Handler) createTask(c httpx.Context) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Error(httpx.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
	}

	in := task.CreateInput{}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Status != nil {
		in.Status = task.Status(*req.Status)
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return err
		}
		in.DueDate = due
	}

	created, err := h.Tasks.Create(c.Request().Context(), owner, in)
	if err != nil {
		return domainError(err)
	}
	return httpx.OK(c, httpx.StatusCreated, created)
}

func (h *Handler) listTasks(c httpx.Context) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}

	var filters task.Filters
	if raw := c.QueryParam("status"); raw != "" {
		status := task.Status(raw)
		if !status.Valid() {
			return httpx.Error(httpx.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("unknown status %q", raw))
		}
		filters.Status = &status
	}
	if raw := c.QueryParam("dueDate"); raw != "" {
		due, err := parseDueDate(raw)
		if err != nil {
			return err
		}
		filters.DueBefore = due
	}

	result, err := h.Tasks.List(c.Request().Context(), owner, filters)
	if err != nil {
		return domainError(err)
	}
	return httpx.OK(c, httpx.StatusOK, result)
}

func (h *Handler) getTask(c httpx.Context) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}

	found, err := h.Tasks.Get(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return httpx.OK(c, httpx.StatusOK, found)
}

func (h *Handler) updateTask(c httpx.Context) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Error(httpx.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
	}

	patch := task.Patch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		patch.Status = &status
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return err
		}
		patch.DueDate = due
	}

	updated, err := h.Tasks.Update(c.Request().Context(), owner, c.Param("id"), patch)
	if err != nil {
		return domainError(err)
	}
	return httpx.OK(c, httpx.StatusOK, updated)
}

func (h *Handler) deleteTask(c httpx.Context) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}

	if err := h.Tasks.Delete(c.Request().Context(), owner, c.Param("id")); err != nil {
		return domainError(err)
	}
	return httpx.OK(c, httpx.StatusOK, map[string]string{"id": c.Param("id")})
}

func caller(c httpx.Context) (string, error) {
	owner, ok := auth.CallerID(c)
	if !ok {
		return "", httpx.Error(httpx.StatusUnauthorized, "UNAUTHORIZED", "missing authenticated caller")
	}
	return owner, nil
}

// parseDueDate accepts RFC3339 timestamps or bare dates. A bare date means
// end of that day in UTC, so "due on or before" includes the whole day.
func parseDueDate(raw string) (*time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		utc := ts.UTC()
		return &utc, nil
	}
	if day, err := time.Parse("2006-01-02", raw); err == nil {
		eod := day.Add(24*time.Hour - time.Nanosecond).UTC()
		return &eod, nil
	}
	return nil, httpx.Error(httpx.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("invalid dueDate %q", raw))
}
