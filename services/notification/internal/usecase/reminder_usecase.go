package usecase

import (
	"context"
	"time"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/repo/persistent"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReminderUseCase is the owner-scoped query and lifecycle surface for
// reminders. Every call is scoped to userID; other users' rows are
// reported as not found.
type ReminderUseCase interface {
	ListReminders(ctx context.Context, userID string, filter entity.ReminderFilter) (*entity.ReminderPage, error)
	GetReminder(ctx context.Context, userID, id string) (*entity.Reminder, error)
	MarkAsRead(ctx context.Context, userID, id string) (*entity.Reminder, error)
	Dismiss(ctx context.Context, userID, id string) (*entity.Reminder, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*entity.ReminderStats, error)
}

type reminderUseCase struct {
	reminderRepo persistent.ReminderRepository
	logger       *logger.Logger
	now          func() time.Time
}

func NewReminderUseCase(reminderRepo persistent.ReminderRepository, logger *logger.Logger) ReminderUseCase {
	return &reminderUseCase{
		reminderRepo: reminderRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// NormalizePage clamps page and limit to the supported range.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func validateReminderFilter(filter entity.ReminderFilter) error {
	if filter.Type != "" && !filter.Type.Valid() {
		return entity.NewValidationError("type", "must be one of due_soon, due_today, manual")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return entity.NewValidationError("priority", "must be one of low, medium, high, urgent")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return entity.NewValidationError("status", "must be one of unread, read, dismissed")
	}
	switch filter.SortBy {
	case "", entity.SortByReminderDate, entity.SortByDueDate, entity.SortByCreatedAt, entity.SortByPriority:
	default:
		return entity.NewValidationError("sort_by", "must be one of reminder_date, due_date, created_at, priority")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return entity.NewValidationError("from", "must not be after to")
	}
	return nil
}

func (uc *reminderUseCase) ListReminders(ctx context.Context, userID string, filter entity.ReminderFilter) (*entity.ReminderPage, error) {
	if err := validateReminderFilter(filter); err != nil {
		return nil, err
	}
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit)

	reminders, total, err := uc.reminderRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	counts, err := uc.reminderRepo.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &entity.ReminderPage{
		Reminders: reminders,
		Total:     total,
		Page:      filter.Page,
		Limit:     filter.Limit,
		Counts:    counts,
	}, nil
}

func (uc *reminderUseCase) GetReminder(ctx context.Context, userID, id string) (*entity.Reminder, error) {
	return uc.reminderRepo.GetByID(ctx, id, userID)
}

func (uc *reminderUseCase) MarkAsRead(ctx context.Context, userID, id string) (*entity.Reminder, error) {
	return uc.reminderRepo.MarkRead(ctx, id, userID, uc.now())
}

func (uc *reminderUseCase) Dismiss(ctx context.Context, userID, id string) (*entity.Reminder, error) {
	return uc.reminderRepo.Dismiss(ctx, id, userID, uc.now())
}

func (uc *reminderUseCase) Delete(ctx context.Context, userID, id string) error {
	if err := uc.reminderRepo.SoftDelete(ctx, id, userID); err != nil {
		return err
	}
	uc.logger.Info("[REMINDERS] Reminder %s deleted by owner %s", id, userID)
	return nil
}

func (uc *reminderUseCase) Stats(ctx context.Context, userID string) (*entity.ReminderStats, error) {
	return uc.reminderRepo.Stats(ctx, userID, uc.now())
}
