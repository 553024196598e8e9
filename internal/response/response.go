package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// OK sends a 200 response with fields merged into a {"status": "ok"} envelope.
func OK(c echo.Context, fields map[string]any) error {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["status"] = StatusOK
	return c.JSON(http.StatusOK, body)
}

// ErrorBody builds a {"status": "error", "message": ...} envelope with extra
// fields merged in. Extra fields never replace status or message.
func ErrorBody(message string, extra map[string]any) map[string]any {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	body["status"] = StatusError
	body["message"] = message
	return body
}

// Error sends an error envelope with the given HTTP status.
func Error(c echo.Context, status int, message string, extra map[string]any) error {
	return c.JSON(status, ErrorBody(message, extra))
}

// BadRequest sends 400 with message.
func BadRequest(c echo.Context, message string, extra map[string]any) error {
	return Error(c, http.StatusBadRequest, message, extra)
}

// Forbidden sends 403 with message.
func Forbidden(c echo.Context, message string, extra map[string]any) error {
	return Error(c, http.StatusForbidden, message, extra)
}
