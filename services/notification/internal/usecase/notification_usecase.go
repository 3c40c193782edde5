package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/repo/persistent"
	"task-notify/services/notification/internal/stream"
)

type MainNotificationInput struct {
	Title       string
	Description string
	Type        entity.NotificationType
	ExpiryDate  *time.Time
	Actor       entity.Actor
}

type UserNotificationInput struct {
	Title        string
	Description  string
	RecipientIDs []string
	Type         entity.NotificationType
	Actor        entity.Actor
}

type NotificationUseCase interface {
	CreateMainNotification(ctx context.Context, input MainNotificationInput) (*entity.MainNotification, *entity.FanoutResult, error)
	GetMainNotification(ctx context.Context, actor entity.Actor, id string) (*entity.MainNotification, error)
	ListMainNotifications(ctx context.Context, actor entity.Actor, filter entity.MainNotificationFilter) ([]entity.MainNotification, int64, error)
	DeactivateMainNotification(ctx context.Context, actor entity.Actor, id string) error
	MainNotificationStats(ctx context.Context, actor entity.Actor) (*entity.MainNotificationStats, error)

	CreateUserNotification(ctx context.Context, input UserNotificationInput) (*entity.FanoutResult, error)
	ListUserNotifications(ctx context.Context, userID string, filter entity.UserNotificationFilter) ([]entity.UserNotification, int64, error)
	MarkAsRead(ctx context.Context, userID, id string) (*entity.UserNotification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	UserNotificationStats(ctx context.Context, userID string) (*entity.UserNotificationStats, error)
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	taskRepo         persistent.TaskRepository
	pusher           stream.Pusher
	defaultExpiry    time.Duration
	logger           *logger.Logger
	now              func() time.Time
}

func NewNotificationUseCase(
	notificationRepo persistent.NotificationRepository,
	taskRepo persistent.TaskRepository,
	pusher stream.Pusher,
	defaultExpiry time.Duration,
	logger *logger.Logger,
) NotificationUseCase {
	if defaultExpiry <= 0 {
		defaultExpiry = 30 * 24 * time.Hour
	}
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		taskRepo:         taskRepo,
		pusher:           pusher,
		defaultExpiry:    defaultExpiry,
		logger:           logger,
		now:              time.Now,
	}
}

func normalizeType(t entity.NotificationType) (entity.NotificationType, error) {
	if t == "" {
		return entity.NotificationNormal, nil
	}
	if !t.Valid() {
		return "", entity.NewValidationError("notification_type", "must be one of good, normal, alert")
	}
	return t, nil
}

func (uc *notificationUseCase) CreateMainNotification(ctx context.Context, input MainNotificationInput) (*entity.MainNotification, *entity.FanoutResult, error) {
	if !input.Actor.IsAdmin() {
		return nil, nil, fmt.Errorf("create main notification: %w", entity.ErrForbidden)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, nil, entity.NewValidationError("title", "is required")
	}
	notificationType, err := normalizeType(input.Type)
	if err != nil {
		return nil, nil, err
	}

	now := uc.now().UTC()
	expiry := now.Add(uc.defaultExpiry)
	if input.ExpiryDate != nil {
		if !input.ExpiryDate.After(now) {
			return nil, nil, entity.NewValidationError("expiry_date", "must be in the future")
		}
		expiry = input.ExpiryDate.UTC()
	}

	notification := &entity.MainNotification{
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		NotificationType: notificationType,
		OrganizationID:   input.Actor.OrganizationID,
		IsActive:         true,
		ExpiryDate:       expiry,
		CreatedBy:        input.Actor.UserID,
	}
	if err := uc.notificationRepo.CreateMain(ctx, notification); err != nil {
		return nil, nil, err
	}

	result := &entity.FanoutResult{Created: 1}
	members, err := uc.taskRepo.ListOrganizationMembers(ctx, notification.OrganizationID)
	if err != nil {
		uc.logger.Warn("[FANOUT] Broadcast %s stored but member lookup failed: %v", notification.ID, err)
		return notification, result, nil
	}

	result.Recipients = len(members)
	event := stream.MainNotificationEvent(notification)
	for _, userID := range members {
		result.Pushed += uc.push(ctx, userID, event)
	}

	uc.logger.Info("[FANOUT] Broadcast %s to organization %s: members=%d pushed=%d", notification.ID, notification.OrganizationID, result.Recipients, result.Pushed)
	return notification, result, nil
}

func (uc *notificationUseCase) GetMainNotification(ctx context.Context, actor entity.Actor, id string) (*entity.MainNotification, error) {
	return uc.notificationRepo.GetMain(ctx, id, actor.OrganizationID)
}

func (uc *notificationUseCase) ListMainNotifications(ctx context.Context, actor entity.Actor, filter entity.MainNotificationFilter) ([]entity.MainNotification, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, entity.NewValidationError("notification_type", "must be one of good, normal, alert")
	}
	if filter.IncludeInactive && !actor.IsAdmin() {
		filter.IncludeInactive = false
	}
	return uc.notificationRepo.ListMain(ctx, actor.OrganizationID, uc.now(), filter)
}

func (uc *notificationUseCase) DeactivateMainNotification(ctx context.Context, actor entity.Actor, id string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("deactivate main notification: %w", entity.ErrForbidden)
	}
	if err := uc.notificationRepo.DeactivateMain(ctx, id, actor.OrganizationID); err != nil {
		return err
	}
	uc.logger.Info("[FANOUT] Broadcast %s deactivated by %s", id, actor.UserID)
	return nil
}

func (uc *notificationUseCase) MainNotificationStats(ctx context.Context, actor entity.Actor) (*entity.MainNotificationStats, error) {
	return uc.notificationRepo.MainStats(ctx, actor.OrganizationID, uc.now())
}

func (uc *notificationUseCase) CreateUserNotification(ctx context.Context, input UserNotificationInput) (*entity.FanoutResult, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, entity.NewValidationError("title", "is required")
	}
	recipients := uniqueExcept(input.RecipientIDs, "")
	if len(recipients) == 0 {
		return nil, entity.NewValidationError("recipient_ids", "at least one recipient is required")
	}
	notificationType, err := normalizeType(input.Type)
	if err != nil {
		return nil, err
	}

	members, err := uc.sameOrganization(ctx, input.Actor.OrganizationID, recipients)
	if err != nil {
		return nil, err
	}
	result := &entity.FanoutResult{Recipients: len(recipients), Failed: len(recipients) - len(members)}
	if len(members) == 0 {
		return result, entity.NewValidationError("recipient_ids", "no recipient belongs to your organization")
	}
	if result.Failed > 0 {
		uc.logger.Warn("[FANOUT] Dropped %d recipient(s) outside organization %s", result.Failed, input.Actor.OrganizationID)
	}

	rows := make([]*entity.UserNotification, len(members))
	for i, userID := range members {
		rows[i] = &entity.UserNotification{
			Title:            strings.TrimSpace(input.Title),
			Description:      input.Description,
			UserID:           userID,
			NotificationType: notificationType,
			OrganizationID:   input.Actor.OrganizationID,
		}
	}

	created, err := uc.notificationRepo.CreateUserBatch(ctx, rows)
	result.Created = len(created)
	result.Failed = result.Recipients - result.Created
	if err != nil && result.Created == 0 {
		return result, err
	}
	if lost := len(rows) - len(created); lost > 0 {
		uc.logger.Warn("[FANOUT] %d of %d user notification(s) were not stored", lost, len(rows))
	}

	for _, n := range created {
		result.Pushed += uc.push(ctx, n.UserID, stream.UserNotificationEvent(n))
	}

	uc.logger.Info("[FANOUT] User notification %q: recipients=%d created=%d pushed=%d", input.Title, result.Recipients, result.Created, result.Pushed)
	return result, nil
}

// sameOrganization keeps the recipients that are active members of
// organizationID, in input order.
func (uc *notificationUseCase) sameOrganization(ctx context.Context, organizationID string, recipients []string) ([]string, error) {
	members, err := uc.taskRepo.ListOrganizationMembers(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	inOrg := make(map[string]struct{}, len(members))
	for _, id := range members {
		inOrg[id] = struct{}{}
	}
	kept := make([]string, 0, len(recipients))
	for _, id := range recipients {
		if _, ok := inOrg[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept, nil
}

// push delivers best-effort. Errors are logged and never returned.
func (uc *notificationUseCase) push(ctx context.Context, userID string, event stream.Event) int {
	if uc.pusher == nil {
		return 0
	}
	n, err := uc.pusher.PushToUser(ctx, userID, event)
	if err != nil {
		uc.logger.Warn("[FANOUT] Push %s to user %s failed: %v", event.Type, userID, err)
		return 0
	}
	return n
}

func (uc *notificationUseCase) ListUserNotifications(ctx context.Context, userID string, filter entity.UserNotificationFilter) ([]entity.UserNotification, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, entity.NewValidationError("notification_type", "must be one of good, normal, alert")
	}
	return uc.notificationRepo.ListUser(ctx, userID, filter)
}

func (uc *notificationUseCase) MarkAsRead(ctx context.Context, userID, id string) (*entity.UserNotification, error) {
	return uc.notificationRepo.MarkUserRead(ctx, id, userID)
}

func (uc *notificationUseCase) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	n, err := uc.notificationRepo.MarkAllUserRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("[FANOUT] Marked %d notification(s) read for user %s", n, userID)
	return n, nil
}

func (uc *notificationUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return uc.notificationRepo.CountUnread(ctx, userID)
}

func (uc *notificationUseCase) UserNotificationStats(ctx context.Context, userID string) (*entity.UserNotificationStats, error) {
	return uc.notificationRepo.UserStats(ctx, userID)
}
