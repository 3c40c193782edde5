package http

import (
	"net/http"
	"time"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	logger              *logger.Logger
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		logger:              logger,
	}
}

type CreateMainNotificationRequest struct {
	Title            string     `json:"title" binding:"required,max=255"`
	Description      string     `json:"description"`
	NotificationType string     `json:"notification_type"`
	ExpiryDate       *time.Time `json:"expiry_date"`
}

type CreateUserNotificationRequest struct {
	Title            string   `json:"title" binding:"required,max=255"`
	Description      string   `json:"description"`
	RecipientIDs     []string `json:"recipient_ids" binding:"required,min=1"`
	NotificationType string   `json:"notification_type"`
}

type listNotificationsQuery struct {
	Type            string `form:"notification_type"`
	IsSeen          *bool  `form:"is_seen"`
	IncludeExpired  bool   `form:"include_expired"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page" binding:"omitempty,min=1"`
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type NotificationListResponse struct {
	Notifications interface{} `json:"notifications"`
	Total         int64       `json:"total"`
	Page          int         `json:"page"`
	Limit         int         `json:"limit"`
}

// GetNotifications godoc
// @Summary      List user notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        notification_type query string false "good, normal or alert"
// @Param        is_seen query bool false "Filter by read state"
// @Param        page query int false "Page number"
// @Param        limit query int false "Page size (max 100)"
// @Success      200  {object}  NotificationListResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var query listNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err)
		return
	}
	page, limit := usecase.NormalizePage(query.Page, query.Limit)

	notifications, total, err := h.notificationUseCase.ListUserNotifications(c.Request.Context(), userID, entity.UserNotificationFilter{
		Type:   entity.NotificationType(query.Type),
		IsSeen: query.IsSeen,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		Limit:         limit,
	})
}

// GetUnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationUseCase.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// GetStats godoc
// @Summary      User notification statistics
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.UserNotificationStats
// @Router       /notifications/stats [get]
func (h *NotificationHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.notificationUseCase.UserNotificationStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200  {object}  entity.UserNotification
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	notification, err := h.notificationUseCase.MarkAsRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

// MarkAllAsRead godoc
// @Summary      Mark every notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := h.notificationUseCase.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// CreateUserNotification godoc
// @Summary      Notify specific users
// @Description  Creates one notification per distinct recipient and pushes it to their live connections
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUserNotificationRequest true "Notification"
// @Success      201  {object}  entity.FanoutResult
// @Failure      400  {object}  ErrorResponse
// @Router       /notifications [post]
func (h *NotificationHandler) CreateUserNotification(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateUserNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.notificationUseCase.CreateUserNotification(c.Request.Context(), usecase.UserNotificationInput{
		Title:        req.Title,
		Description:  req.Description,
		RecipientIDs: req.RecipientIDs,
		Type:         entity.NotificationType(req.NotificationType),
		Actor:        actor,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListMainNotifications godoc
// @Summary      List broadcast notifications
// @Description  Active, unexpired broadcasts of the caller's organization. Admins may include inactive ones.
// @Tags         main-notifications
// @Produce      json
// @Security     BearerAuth
// @Param        notification_type query string false "good, normal or alert"
// @Param        include_expired query bool false "Include expired broadcasts"
// @Param        include_inactive query bool false "Include deactivated broadcasts (admin only)"
// @Param        page query int false "Page number"
// @Param        limit query int false "Page size (max 100)"
// @Success      200  {object}  NotificationListResponse
// @Router       /notifications/main [get]
func (h *NotificationHandler) ListMainNotifications(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var query listNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err)
		return
	}
	page, limit := usecase.NormalizePage(query.Page, query.Limit)

	notifications, total, err := h.notificationUseCase.ListMainNotifications(c.Request.Context(), actor, entity.MainNotificationFilter{
		Type:            entity.NotificationType(query.Type),
		IncludeExpired:  query.IncludeExpired,
		IncludeInactive: query.IncludeInactive,
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		Limit:         limit,
	})
}

// GetMainNotification godoc
// @Summary      Get a broadcast notification
// @Tags         main-notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200  {object}  entity.MainNotification
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/main/{id} [get]
func (h *NotificationHandler) GetMainNotification(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	notification, err := h.notificationUseCase.GetMainNotification(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

// GetMainStats godoc
// @Summary      Broadcast notification statistics
// @Tags         main-notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.MainNotificationStats
// @Router       /notifications/main/stats [get]
func (h *NotificationHandler) GetMainStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := h.notificationUseCase.MainNotificationStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateMainNotification godoc
// @Summary      Broadcast to the organization
// @Description  Admin only. Stores the broadcast and pushes it to every connected member.
// @Tags         main-notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateMainNotificationRequest true "Broadcast"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /notifications/main [post]
func (h *NotificationHandler) CreateMainNotification(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateMainNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	notification, result, err := h.notificationUseCase.CreateMainNotification(c.Request.Context(), usecase.MainNotificationInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        entity.NotificationType(req.NotificationType),
		ExpiryDate:  req.ExpiryDate,
		Actor:       actor,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"notification": notification,
		"delivery":     result,
	})
}

// DeactivateMainNotification godoc
// @Summary      Deactivate a broadcast
// @Tags         main-notifications
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/main/{id} [delete]
func (h *NotificationHandler) DeactivateMainNotification(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.notificationUseCase.DeactivateMainNotification(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
