package persistent

import (
	"context"
	"fmt"
	"time"

	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateMain(ctx context.Context, notification *entity.MainNotification) error
	GetMain(ctx context.Context, id, organizationID string) (*entity.MainNotification, error)
	ListMain(ctx context.Context, organizationID string, now time.Time, filter entity.MainNotificationFilter) ([]entity.MainNotification, int64, error)
	DeactivateMain(ctx context.Context, id, organizationID string) error
	MainStats(ctx context.Context, organizationID string, now time.Time) (*entity.MainNotificationStats, error)

	// CreateUserBatch inserts one row per notification and returns the
	// rows that were stored. A failed bulk insert falls back to row-by-row
	// inserts so one bad row does not sink the batch.
	CreateUserBatch(ctx context.Context, notifications []*entity.UserNotification) ([]*entity.UserNotification, error)
	ListUser(ctx context.Context, userID string, filter entity.UserNotificationFilter) ([]entity.UserNotification, int64, error)
	MarkUserRead(ctx context.Context, id, userID string) (*entity.UserNotification, error)
	MarkAllUserRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	UserStats(ctx context.Context, userID string) (*entity.UserNotificationStats, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateMain(ctx context.Context, notification *entity.MainNotification) error {
	m := ToMainNotificationModel(notification)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err, "create main notification")
	}
	*notification = *ToMainNotificationEntity(m)
	return nil
}

func (r *notificationRepository) GetMain(ctx context.Context, id, organizationID string) (*entity.MainNotification, error) {
	var m model.MainNotificationModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&m).Error
	if err != nil {
		return nil, translate(err, "get main notification")
	}
	return ToMainNotificationEntity(&m), nil
}

func (r *notificationRepository) ListMain(ctx context.Context, organizationID string, now time.Time, filter entity.MainNotificationFilter) ([]entity.MainNotification, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.MainNotificationModel{}).
		Where("organization_id = ?", organizationID)

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if !filter.IncludeExpired {
		query = query.Where("expiry_date > ?", now.UTC())
	}
	if filter.Type != "" {
		query = query.Where("notification_type = ?", string(filter.Type))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count main notifications")
	}

	query = query.Order("created_at DESC").Order("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(pageOffset(filter.Page, filter.Limit))
	}

	var models []model.MainNotificationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, translate(err, "list main notifications")
	}

	notifications := make([]entity.MainNotification, len(models))
	for i := range models {
		notifications[i] = *ToMainNotificationEntity(&models[i])
	}
	return notifications, total, nil
}

func (r *notificationRepository) DeactivateMain(ctx context.Context, id, organizationID string) error {
	res := r.db.WithContext(ctx).Model(&model.MainNotificationModel{}).
		Where("id = ? AND organization_id = ?", id, organizationID).
		Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "deactivate main notification")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deactivate main notification %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *notificationRepository) MainStats(ctx context.Context, organizationID string, now time.Time) (*entity.MainNotificationStats, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.MainNotificationModel{}).
			Where("organization_id = ?", organizationID)
	}

	stats := &entity.MainNotificationStats{ByType: map[string]int64{}}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, translate(err, "count main notifications")
	}
	if err := base().Where("is_active = ? AND expiry_date > ?", true, now.UTC()).Count(&stats.Active).Error; err != nil {
		return nil, translate(err, "count active main notifications")
	}
	if err := base().Where("expiry_date <= ?", now.UTC()).Count(&stats.Expired).Error; err != nil {
		return nil, translate(err, "count expired main notifications")
	}

	var rows []groupCount
	err := base().Select("notification_type AS group_key, COUNT(*) AS count").
		Group("notification_type").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "count main notifications by type")
	}
	for _, row := range rows {
		stats.ByType[row.GroupKey] = row.Count
	}
	return stats, nil
}

func (r *notificationRepository) CreateUserBatch(ctx context.Context, notifications []*entity.UserNotification) ([]*entity.UserNotification, error) {
	if len(notifications) == 0 {
		return nil, nil
	}

	models := make([]*model.UserNotificationModel, len(notifications))
	for i, n := range notifications {
		models[i] = ToUserNotificationModel(n)
	}

	db := r.db.WithContext(ctx)
	if err := db.Create(models).Error; err == nil {
		created := make([]*entity.UserNotification, len(models))
		for i, m := range models {
			created[i] = ToUserNotificationEntity(m)
		}
		return created, nil
	}

	var (
		created []*entity.UserNotification
		lastErr error
	)
	for _, n := range notifications {
		m := ToUserNotificationModel(n)
		if err := db.Create(m).Error; err != nil {
			lastErr = translate(err, "create user notification for "+n.UserID)
			continue
		}
		created = append(created, ToUserNotificationEntity(m))
	}
	if len(created) == 0 {
		return nil, lastErr
	}
	return created, nil
}

func (r *notificationRepository) ListUser(ctx context.Context, userID string, filter entity.UserNotificationFilter) ([]entity.UserNotification, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.UserNotificationModel{}).
		Where("user_id = ?", userID)

	if filter.Type != "" {
		query = query.Where("notification_type = ?", string(filter.Type))
	}
	if filter.IsSeen != nil {
		query = query.Where("is_seen = ?", *filter.IsSeen)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count user notifications")
	}

	query = query.Order("created_at DESC").Order("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(pageOffset(filter.Page, filter.Limit))
	}

	var models []model.UserNotificationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, translate(err, "list user notifications")
	}

	notifications := make([]entity.UserNotification, len(models))
	for i := range models {
		notifications[i] = *ToUserNotificationEntity(&models[i])
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkUserRead(ctx context.Context, id, userID string) (*entity.UserNotification, error) {
	db := r.db.WithContext(ctx)
	err := db.Model(&model.UserNotificationModel{}).
		Where("id = ? AND user_id = ? AND is_seen = ?", id, userID, false).
		Update("is_seen", true).Error
	if err != nil {
		return nil, translate(err, "mark user notification read")
	}

	var m model.UserNotificationModel
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, translate(err, "get user notification")
	}
	return ToUserNotificationEntity(&m), nil
}

func (r *notificationRepository) MarkAllUserRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.UserNotificationModel{}).
		Where("user_id = ? AND is_seen = ?", userID, false).
		Update("is_seen", true)
	if res.Error != nil {
		return 0, translate(res.Error, "mark all user notifications read")
	}
	return res.RowsAffected, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserNotificationModel{}).
		Where("user_id = ? AND is_seen = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "count unread notifications")
	}
	return count, nil
}

func (r *notificationRepository) UserStats(ctx context.Context, userID string) (*entity.UserNotificationStats, error) {
	var rows []struct {
		NotificationType string
		IsSeen           bool
		Count            int64
	}
	err := r.db.WithContext(ctx).Model(&model.UserNotificationModel{}).
		Select("notification_type, is_seen, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("notification_type, is_seen").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "user notification stats")
	}

	stats := &entity.UserNotificationStats{ByType: map[string]int64{}}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByType[row.NotificationType] += row.Count
		if row.IsSeen {
			stats.Read += row.Count
		} else {
			stats.Unread += row.Count
		}
	}
	return stats, nil
}
