// errors.go - Structured error handling for API responses
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/image-inference/backend/internal/models"
)

// APIError carries an HTTP status with a user-facing message. The
// error handler renders it in the uniform response envelope, so error
// payloads look the same as success payloads with ok=false and null
// data.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewUnsupportedMediaError creates a 415 Unsupported Media Type error
func NewUnsupportedMediaError(message string) *APIError {
	return &APIError{Status: http.StatusUnsupportedMediaType, Message: message}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

// NewInternalError creates a 500 Internal Server Error, appending the
// cause so the client sees the scope-specific reason.
func NewInternalError(message string, cause error) *APIError {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &APIError{Status: http.StatusInternalServerError, Message: message}
}

// ErrorHandler renders every error through the response envelope.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"

	switch e := err.(type) {
	case *APIError:
		status = e.Status
		msg = e.Message
	case *echo.HTTPError:
		status = e.Code
		msg = fmt.Sprintf("%v", e.Message)
		if status == http.StatusRequestEntityTooLarge {
			msg = "file size exceeds the configured limit"
		}
	}

	c.JSON(status, models.NewResponse(false, msg, nil))
}
