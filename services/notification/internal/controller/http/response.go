package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"task-notify/pkg/logger"
	"task-notify/pkg/middleware"
	"task-notify/services/notification/internal/entity"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func classify(err error) (int, string, string) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_failed", verr.Error()
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrPermission):
		// Permission failures look like missing rows so ids cannot be probed.
		return http.StatusNotFound, "not_found", "Not found"
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden, "forbidden", "Insufficient permissions"
	case errors.Is(err, entity.ErrInvalidState):
		return http.StatusConflict, "invalid_state", err.Error()
	case errors.Is(err, entity.ErrAlreadyExists):
		return http.StatusConflict, "already_exists", "Already exists"
	case errors.Is(err, entity.ErrSweepInProgress):
		return http.StatusConflict, "sweep_in_progress", "A reminder sweep is already running"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}

func respondError(c *gin.Context, log *logger.Logger, err error) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_failed"})
}

// currentUser returns the authenticated user id or writes 401.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Code: "unauthorized"})
		return "", false
	}
	return userID, true
}

func currentActor(c *gin.Context) (entity.Actor, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return entity.Actor{}, false
	}
	return entity.Actor{
		UserID:         userID,
		OrganizationID: c.GetString(middleware.ContextOrganizationID),
		Role:           c.GetString(middleware.ContextRole),
	}, true
}

// parseTime accepts RFC 3339 timestamps and plain dates.
func parseTime(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	return nil, entity.NewValidationError(field, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}
