package handlers

import (
	"errors"
	"io"
	"net/http"

	"task_manager"
	"task_manager/internal/policy"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgServerError        = "Server Error"
	msgMalformedJSON      = "Malformed JSON"
	msgInvalidCredentials = "Invalid credentials"
	msgUsernameTaken      = "Username taken"
	msgTaskNotFound       = "Task not found"
)

// Centralized error logging and response for unexpected failures.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, task_manager.ErrorResponse{Message: userMsg})
}

// writeError translates service and policy errors into status codes.
// Anything unrecognised is logged under logKey and answered with 500.
func (h *Handler) writeError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	var (
		denied  *policy.DeniedError
		invalid *service.ValidationError
	)
	switch {
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, task_manager.ErrorResponse{Message: denied.Reason})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, task_manager.ErrorResponse{
			Message: invalid.Message,
			Errors:  invalid.Errors,
		})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, task_manager.ErrorResponse{Message: msgUnauthenticated})
	case errors.Is(err, service.ErrInvalidCredentials):
		h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		c.JSON(http.StatusUnauthorized, task_manager.ErrorResponse{Message: msgInvalidCredentials})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, task_manager.ErrorResponse{Message: msgUsernameTaken})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, task_manager.ErrorResponse{Message: msgTaskNotFound})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, msgServerError, logKey, err, kv...)
	}
}

// bindJSON decodes the body into dst and writes 422 on malformed input.
// An empty body decodes as an empty object so field validation can report
// what is missing. Returns false if the request was already handled.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		h.log.Infow("bad_request_body", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusUnprocessableEntity, task_manager.ErrorResponse{Message: msgMalformedJSON})
		return false
	}
	return true
}
