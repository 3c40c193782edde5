package http

import (
	"net/http"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	reminderUseCase usecase.ReminderUseCase
	policy          usecase.ReminderPolicy
	logger          *logger.Logger
}

func NewReminderHandler(reminderUseCase usecase.ReminderUseCase, policy usecase.ReminderPolicy, logger *logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderUseCase: reminderUseCase,
		policy:          policy,
		logger:          logger,
	}
}

type ListRemindersQuery struct {
	Search   string `form:"search"`
	Type     string `form:"type"`
	Priority string `form:"priority"`
	Status   string `form:"status"`
	From     string `form:"from"`
	To       string `form:"to"`
	SortBy   string `form:"sort_by"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ManualReminderRequest struct {
	TaskID        string `json:"task_id" binding:"required"`
	DaysThreshold int    `json:"days_threshold" binding:"min=0"`
	Message       string `json:"message" binding:"max=1000"`
}

// ListReminders godoc
// @Summary      List reminders
// @Description  List the caller's reminders with filters, sort and pagination
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Free-text search on title and description"
// @Param        type query string false "due_soon, due_today or manual"
// @Param        priority query string false "low, medium, high or urgent"
// @Param        status query string false "unread, read or dismissed"
// @Param        from query string false "Reminder date lower bound"
// @Param        to query string false "Reminder date upper bound"
// @Param        sort_by query string false "reminder_date, due_date, created_at or priority"
// @Param        order query string false "asc or desc"
// @Param        page query int false "Page number"
// @Param        limit query int false "Page size (max 100)"
// @Success      200  {object}  entity.ReminderPage
// @Failure      400  {object}  ErrorResponse
// @Router       /reminders [get]
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var query ListRemindersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err)
		return
	}

	from, err := parseTime("from", query.From)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	to, err := parseTime("to", query.To)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := h.reminderUseCase.ListReminders(c.Request.Context(), userID, entity.ReminderFilter{
		Search:   query.Search,
		Type:     entity.ReminderType(query.Type),
		Priority: entity.ReminderPriority(query.Priority),
		Status:   entity.ReminderStatus(query.Status),
		From:     from,
		To:       to,
		SortBy:   entity.ReminderSortField(query.SortBy),
		SortDesc: query.Order == "desc",
		Page:     query.Page,
		Limit:    query.Limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetReminder godoc
// @Summary      Get a reminder
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Reminder ID"
// @Success      200  {object}  entity.Reminder
// @Failure      404  {object}  ErrorResponse
// @Router       /reminders/{id} [get]
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reminder, err := h.reminderUseCase.GetReminder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// MarkAsRead godoc
// @Summary      Mark a reminder as read
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Reminder ID"
// @Success      200  {object}  entity.Reminder
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /reminders/{id}/read [patch]
func (h *ReminderHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reminder, err := h.reminderUseCase.MarkAsRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// Dismiss godoc
// @Summary      Dismiss a reminder
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Reminder ID"
// @Success      200  {object}  entity.Reminder
// @Failure      404  {object}  ErrorResponse
// @Router       /reminders/{id}/dismiss [patch]
func (h *ReminderHandler) Dismiss(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reminder, err := h.reminderUseCase.Dismiss(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// DeleteReminder godoc
// @Summary      Delete a reminder
// @Description  Soft-deletes the reminder; it disappears from every listing
// @Tags         reminders
// @Security     BearerAuth
// @Param        id path string true "Reminder ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /reminders/{id} [delete]
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.reminderUseCase.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats godoc
// @Summary      Reminder statistics
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.ReminderStats
// @Router       /reminders/stats [get]
func (h *ReminderHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.reminderUseCase.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SendManualReminder godoc
// @Summary      Send a manual reminder
// @Description  Reminds every recipient of a task now. Callers must be related to the task.
// @Tags         reminders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ManualReminderRequest true "Manual reminder"
// @Success      201  {object}  usecase.ManualReminderResult
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /reminders/manual [post]
func (h *ReminderHandler) SendManualReminder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ManualReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.policy.SendManualReminder(c.Request.Context(), usecase.ManualReminderInput{
		TaskID:        req.TaskID,
		DaysThreshold: req.DaysThreshold,
		Message:       req.Message,
		Actor:         actor,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
