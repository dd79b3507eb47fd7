package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the wire error envelope: a single machine-readable message.
type ErrorBody struct {
	Error string `json:"error"`
}

// OKResponse writes data as a 200 JSON response.
func OKResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// ErrorResponse writes the error envelope with the given status.
func ErrorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{Error: message})
}

// InternalServerErrorResponse writes a generic 500 when no safe message exists.
func InternalServerErrorResponse(c echo.Context) error {
	return ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
}
