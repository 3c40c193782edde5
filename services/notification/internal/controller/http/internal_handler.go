package http

import (
	"context"
	"net/http"

	"task-notify/pkg/logger"
	"task-notify/pkg/queue"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
)

// Sweeper runs the reminder sweep on demand.
type Sweeper interface {
	RunSweep(ctx context.Context) (*entity.SweepReport, error)
}

// QueueInspector reports the task event backlog.
type QueueInspector interface {
	GetQueueLength() (int, error)
}

// InternalHandler serves admin and service-to-service endpoints.
type InternalHandler struct {
	eventUseCase usecase.EventUseCase
	sweeper      Sweeper
	queue        QueueInspector
	logger       *logger.Logger
}

func NewInternalHandler(eventUseCase usecase.EventUseCase, sweeper Sweeper, queue QueueInspector, logger *logger.Logger) *InternalHandler {
	return &InternalHandler{
		eventUseCase: eventUseCase,
		sweeper:      sweeper,
		queue:        queue,
		logger:       logger,
	}
}

// HandleTaskEvent godoc
// @Summary      Deliver a task event
// @Description  Synchronous alternative to the message queue for task and team changes
// @Tags         internal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body queue.TaskEvent true "Task event"
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Router       /internal/events [post]
func (h *InternalHandler) HandleTaskEvent(c *gin.Context) {
	var event queue.TaskEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		respondBadRequest(c, err)
		return
	}
	if event.Type == "" {
		respondError(c, h.logger, entity.NewValidationError("type", "is required"))
		return
	}

	if err := h.eventUseCase.HandleTaskEvent(c.Request.Context(), event); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "processed", "type": event.Type})
}

// RunSweep godoc
// @Summary      Run the reminder sweep now
// @Tags         internal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.SweepReport
// @Failure      409  {object}  ErrorResponse
// @Router       /internal/reminders/sweep [post]
func (h *InternalHandler) RunSweep(c *gin.Context) {
	report, err := h.sweeper.RunSweep(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// QueueStatus godoc
// @Summary      Task event backlog
// @Tags         internal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int
// @Failure      503  {object}  ErrorResponse
// @Router       /internal/queue [get]
func (h *InternalHandler) QueueStatus(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Queue not configured", Code: "unavailable"})
		return
	}
	length, err := h.queue.GetQueueLength()
	if err != nil {
		h.logger.Error("Failed to inspect event queue: %v", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Queue unavailable", Code: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": queue.ReminderEventsQueue, "length": length})
}
