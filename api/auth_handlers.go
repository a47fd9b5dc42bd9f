package api

import (
	"github.com/sobebarali/mini-task-tracker/httpx"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionPayload struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

func (h *Handler) signup(c httpx.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Error(httpx.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
	}

	user, token, err := h.Auth.Signup(c.Request().Context(), req.Name, req.Email, []byte(req.Password))
	if err != nil {
		return domainError(err)
	}
	return httpx.OK(c, httpx.StatusCreated, sessionPayload{User: toUserPayload(user), Token: token})
}

func (h *Handler) login(c httpx.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Error(httpx.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
	}

	user, token, err := h.Auth.Login(c.Request().Context(), req.Email, []byte(req.Password))
	if err != nil {
		return domainError(err)
	}
	return httpx.OK(c, httpx.StatusOK, sessionPayload{User: toUserPayload(user), Token: token})
}
