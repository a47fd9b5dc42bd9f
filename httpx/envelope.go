package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body. Success carries Data and a null
// Error; failure carries a null Data and a populated Error.
type Envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody describes a failed request inside the envelope.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// OK writes a success envelope with the given status.
func OK(c Context, status int, data any) error {
	return c.JSON(status, Envelope{Data: data})
}

// Error builds an HTTP error whose body is rendered as an error envelope by
// the server's error handler.
func Error(status int, code, message string) error {
	return echo.NewHTTPError(status, ErrorBody{Code: code, Message: message, StatusCode: status})
}

// HTTPError constructs a plain echo HTTPError without importing echo in
// callers. The error handler assigns a code derived from the status.
func HTTPError(status int, message any) error { return echo.NewHTTPError(status, message) }

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
