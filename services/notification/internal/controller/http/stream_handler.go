package http

import (
	"net/http"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/stream"
	"task-notify/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type StreamHandler struct {
	registry            *stream.Registry
	notificationUseCase usecase.NotificationUseCase
	logger              *logger.Logger
}

func NewStreamHandler(registry *stream.Registry, notificationUseCase usecase.NotificationUseCase, logger *logger.Logger) *StreamHandler {
	return &StreamHandler{
		registry:            registry,
		notificationUseCase: notificationUseCase,
		logger:              logger,
	}
}

func (h *StreamHandler) unread() stream.UnreadFunc {
	if h.notificationUseCase == nil {
		return nil
	}
	return h.notificationUseCase.UnreadCount
}

// HandleSSE godoc
// @Summary      Live notification stream (SSE)
// @Description  Server-sent events: connected, initial, heartbeat, main-notification, user-notification. The token may be passed as a query parameter.
// @Tags         stream
// @Produce      text/event-stream
// @Param        token query string false "JWT when no Authorization header can be sent"
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Router       /stream [get]
func (h *StreamHandler) HandleSSE(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stream.PrepareSSE(c.Writer)
	c.Status(http.StatusOK)
	c.Writer.Flush()

	h.logger.Info("[STREAM] SSE connection opened for user %s", userID)
	if err := h.registry.Serve(c.Request.Context(), userID, stream.NewSSESender(c.Writer), h.unread()); err != nil {
		h.logger.Warn("[STREAM] SSE connection for user %s ended: %v", userID, err)
		return
	}
	h.logger.Info("[STREAM] SSE connection closed for user %s", userID)
}

// HandleWebSocket godoc
// @Summary      Live notification stream (WebSocket)
// @Description  Same events as the SSE stream, one JSON object per text frame.
// @Tags         stream
// @Param        token query string false "JWT when no Authorization header can be sent"
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (h *StreamHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("[STREAM] WebSocket upgrade failed for user %s: %v", userID, err)
		return
	}
	defer conn.Close()

	h.logger.Info("[STREAM] WebSocket connection opened for user %s", userID)
	if err := stream.ServeWebSocket(c.Request.Context(), h.registry, conn, userID, h.unread()); err != nil {
		h.logger.Warn("[STREAM] WebSocket connection for user %s ended: %v", userID, err)
		return
	}
	h.logger.Info("[STREAM] WebSocket connection closed for user %s", userID)
}

// ConnectionStats godoc
// @Summary      Live connection counts
// @Tags         stream
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int
// @Router       /stream/connections [get]
func (h *StreamHandler) ConnectionStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_connections":  h.registry.UserConnectionCount(userID),
		"total_connections": h.registry.ConnectionCount(),
	})
}
