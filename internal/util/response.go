package util

import (
	"aptitude_backend/pkg/logger"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

var exposeErrors atomic.Bool

// SetExposeErrors toggles raw backend error text in 5xx bodies.
func SetExposeErrors(v bool) {
	exposeErrors.Store(v)
}

func JSON(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

func Error(c *gin.Context, code int, message, detail string) {
	c.JSON(code, ErrorResponse{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

func BadRequest(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err.Error())
}

// StatusFor is the only place an error kind is turned into an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrDuplicate), IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes the JSON error for err. resource names the record kind, e.g. "Question".
func Fail(c *gin.Context, err error, resource string) {
	status := StatusFor(err)
	noun := strings.ToLower(resource)

	var message string
	switch {
	case status == http.StatusNotFound:
		message = resource + " not found"
	case errors.Is(err, ErrInvalidID):
		message = "Invalid " + noun + " id"
	case errors.Is(err, ErrDuplicate):
		message = resource + " already exists"
	case status == http.StatusBadRequest:
		message = "Invalid " + noun + " data"
	case errors.Is(err, ErrConnection):
		message = "Database unavailable"
	default:
		message = "Internal Server Error"
	}

	detail := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("resource", noun),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		if !exposeErrors.Load() {
			detail = http.StatusText(status)
		}
	}

	Error(c, status, message, detail)
}
