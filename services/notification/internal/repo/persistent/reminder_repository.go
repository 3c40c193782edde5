package persistent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReminderRepository interface {
	// CreateIfAbsent inserts the reminder unless a live row with the same
	// (task, assignee, reminder date) exists, in which case it returns
	// entity.ErrAlreadyExists.
	CreateIfAbsent(ctx context.Context, reminder *entity.Reminder) error
	Create(ctx context.Context, reminder *entity.Reminder) error
	Exists(ctx context.Context, taskID, assignedTo string, reminderDate time.Time) (bool, error)
	GetByID(ctx context.Context, id, ownerID string) (*entity.Reminder, error)
	MarkRead(ctx context.Context, id, ownerID string, at time.Time) (*entity.Reminder, error)
	Dismiss(ctx context.Context, id, ownerID string, at time.Time) (*entity.Reminder, error)
	SoftDelete(ctx context.Context, id, ownerID string) error
	SoftDeleteByTask(ctx context.Context, taskID string) (int64, error)
	List(ctx context.Context, ownerID string, filter entity.ReminderFilter) ([]entity.Reminder, int64, error)
	Counts(ctx context.Context, ownerID string) (entity.ReminderCounts, error)
	Stats(ctx context.Context, ownerID string, now time.Time) (*entity.ReminderStats, error)
}

type reminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.ReminderModel{}).Where("is_deleted = ?", false)
}

func (r *reminderRepository) CreateIfAbsent(ctx context.Context, reminder *entity.Reminder) error {
	m, err := ToReminderModel(reminder)
	if err != nil {
		return fmt.Errorf("encode reminder metadata: %w", err)
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return translate(res.Error, "create reminder")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("create reminder for task %s: %w", reminder.TaskID, entity.ErrAlreadyExists)
	}

	*reminder = *ToReminderEntity(m)
	return nil
}

func (r *reminderRepository) Create(ctx context.Context, reminder *entity.Reminder) error {
	m, err := ToReminderModel(reminder)
	if err != nil {
		return fmt.Errorf("encode reminder metadata: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err, "create reminder")
	}
	*reminder = *ToReminderEntity(m)
	return nil
}

func (r *reminderRepository) Exists(ctx context.Context, taskID, assignedTo string, reminderDate time.Time) (bool, error) {
	var count int64
	err := r.live(ctx).
		Where("task_id = ? AND assigned_to = ? AND reminder_date = ?", taskID, assignedTo, reminderDate.UTC()).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check reminder")
	}
	return count > 0, nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id, ownerID string) (*entity.Reminder, error) {
	var m model.ReminderModel
	err := r.live(ctx).Where("id = ? AND assigned_to = ?", id, ownerID).First(&m).Error
	if err != nil {
		return nil, translate(err, "get reminder")
	}
	return ToReminderEntity(&m), nil
}

func (r *reminderRepository) MarkRead(ctx context.Context, id, ownerID string, at time.Time) (*entity.Reminder, error) {
	res := r.live(ctx).
		Where("id = ? AND assigned_to = ? AND status = ?", id, ownerID, string(entity.ReminderStatusUnread)).
		Updates(map[string]interface{}{
			"status":  string(entity.ReminderStatusRead),
			"read_at": at.UTC(),
		})
	if res.Error != nil {
		return nil, translate(res.Error, "mark reminder read")
	}

	reminder, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && reminder.Status == entity.ReminderStatusDismissed {
		return nil, fmt.Errorf("reminder %s is dismissed: %w", id, entity.ErrInvalidState)
	}
	return reminder, nil
}

func (r *reminderRepository) Dismiss(ctx context.Context, id, ownerID string, at time.Time) (*entity.Reminder, error) {
	res := r.live(ctx).
		Where("id = ? AND assigned_to = ? AND status IN ?", id, ownerID,
			[]string{string(entity.ReminderStatusUnread), string(entity.ReminderStatusRead)}).
		Updates(map[string]interface{}{
			"status":       string(entity.ReminderStatusDismissed),
			"dismissed_at": at.UTC(),
		})
	if res.Error != nil {
		return nil, translate(res.Error, "dismiss reminder")
	}
	return r.GetByID(ctx, id, ownerID)
}

func (r *reminderRepository) SoftDelete(ctx context.Context, id, ownerID string) error {
	res := r.live(ctx).
		Where("id = ? AND assigned_to = ?", id, ownerID).
		Update("is_deleted", true)
	if res.Error != nil {
		return translate(res.Error, "delete reminder")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete reminder %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *reminderRepository) SoftDeleteByTask(ctx context.Context, taskID string) (int64, error) {
	res := r.live(ctx).Where("task_id = ?", taskID).Update("is_deleted", true)
	if res.Error != nil {
		return 0, translate(res.Error, "delete task reminders")
	}
	return res.RowsAffected, nil
}

const priorityRank = "CASE priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

func (r *reminderRepository) List(ctx context.Context, ownerID string, filter entity.ReminderFilter) ([]entity.Reminder, int64, error) {
	query := r.live(ctx).Where("assigned_to = ?", ownerID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", string(filter.Priority))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		query = query.Where("reminder_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("reminder_date <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count reminders")
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	switch filter.SortBy {
	case entity.SortByPriority:
		query = query.Order(priorityRank + " " + direction)
	case entity.SortByDueDate, entity.SortByCreatedAt:
		query = query.Order(string(filter.SortBy) + " " + direction)
	default:
		query = query.Order("reminder_date " + direction)
	}
	query = query.Order("id ASC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(pageOffset(filter.Page, filter.Limit))
	}

	var models []model.ReminderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, translate(err, "list reminders")
	}
	return ToReminderEntities(models), total, nil
}

type groupCount struct {
	GroupKey string
	Count    int64
}

func (r *reminderRepository) countBy(ctx context.Context, ownerID, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.live(ctx).
		Select(column+" AS group_key, COUNT(*) AS count").
		Where("assigned_to = ?", ownerID).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "count reminders by "+column)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.GroupKey] = row.Count
	}
	return out, nil
}

func (r *reminderRepository) Counts(ctx context.Context, ownerID string) (entity.ReminderCounts, error) {
	byStatus, err := r.countBy(ctx, ownerID, "status")
	if err != nil {
		return entity.ReminderCounts{}, err
	}

	counts := entity.ReminderCounts{
		Unread: byStatus[string(entity.ReminderStatusUnread)],
		Read:   byStatus[string(entity.ReminderStatusRead)],
	}
	for _, n := range byStatus {
		counts.Total += n
	}
	return counts, nil
}

func (r *reminderRepository) Stats(ctx context.Context, ownerID string, now time.Time) (*entity.ReminderStats, error) {
	byStatus, err := r.countBy(ctx, ownerID, "status")
	if err != nil {
		return nil, err
	}
	byType, err := r.countBy(ctx, ownerID, "type")
	if err != nil {
		return nil, err
	}
	byPriority, err := r.countBy(ctx, ownerID, "priority")
	if err != nil {
		return nil, err
	}

	var overdue int64
	err = r.live(ctx).
		Where("assigned_to = ? AND status = ? AND due_date < ?", ownerID, string(entity.ReminderStatusUnread), now.UTC()).
		Count(&overdue).Error
	if err != nil {
		return nil, translate(err, "count overdue reminders")
	}

	stats := &entity.ReminderStats{
		Unread:        byStatus[string(entity.ReminderStatusUnread)],
		Read:          byStatus[string(entity.ReminderStatusRead)],
		Dismissed:     byStatus[string(entity.ReminderStatusDismissed)],
		OverdueUnread: overdue,
		ByType:        byType,
		ByPriority:    byPriority,
	}
	for _, n := range byStatus {
		stats.Total += n
	}
	return stats, nil
}
