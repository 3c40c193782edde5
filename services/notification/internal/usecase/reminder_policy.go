package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/repo/persistent"
)

// ReminderPolicy decides which reminders a task gets and creates them.
type ReminderPolicy interface {
	// ComputeReminders creates the reminder for the threshold that fires
	// today, if any, for every recipient except the acting user. It is
	// idempotent and returns the number of new rows.
	ComputeReminders(ctx context.Context, task *entity.Task, actingUserID string) (int, error)
	// RemindForThreshold creates the reminders for a given threshold
	// regardless of today's date. The sweep calls it for tasks it has
	// already matched to a threshold window.
	RemindForThreshold(ctx context.Context, task *entity.Task, threshold int, actingUserID string) (int, error)
	SendManualReminder(ctx context.Context, input ManualReminderInput) (*ManualReminderResult, error)
}

type ManualReminderInput struct {
	TaskID        string
	DaysThreshold int
	Message       string
	Actor         entity.Actor
}

type ManualReminderResult struct {
	Reminders    []entity.Reminder    `json:"reminders"`
	Created      int                  `json:"created"`
	Skipped      []string             `json:"skipped,omitempty"`
	Notification *entity.FanoutResult `json:"notification,omitempty"`
}

// UserNotifier is the part of the notification fan-out the policy needs.
type UserNotifier interface {
	CreateUserNotification(ctx context.Context, input UserNotificationInput) (*entity.FanoutResult, error)
}

type reminderPolicy struct {
	reminderRepo persistent.ReminderRepository
	taskRepo     persistent.TaskRepository
	resolver     RecipientResolver
	notifier     UserNotifier
	calendar     *ReminderCalendar
	logger       *logger.Logger
	now          func() time.Time
}

func NewReminderPolicy(
	reminderRepo persistent.ReminderRepository,
	taskRepo persistent.TaskRepository,
	resolver RecipientResolver,
	notifier UserNotifier,
	calendar *ReminderCalendar,
	logger *logger.Logger,
) ReminderPolicy {
	return &reminderPolicy{
		reminderRepo: reminderRepo,
		taskRepo:     taskRepo,
		resolver:     resolver,
		notifier:     notifier,
		calendar:     calendar,
		logger:       logger,
		now:          time.Now,
	}
}

func (p *reminderPolicy) ComputeReminders(ctx context.Context, task *entity.Task, actingUserID string) (int, error) {
	if task == nil || !task.IsOpen() || task.DueDate == nil {
		return 0, nil
	}

	threshold, ok := p.calendar.ActiveThreshold(*task.DueDate, p.now())
	if !ok {
		return 0, nil
	}
	return p.RemindForThreshold(ctx, task, threshold, actingUserID)
}

func (p *reminderPolicy) RemindForThreshold(ctx context.Context, task *entity.Task, threshold int, actingUserID string) (int, error) {
	if task == nil || !task.IsOpen() || task.DueDate == nil {
		return 0, nil
	}

	recipients, err := p.resolver.Resolve(ctx, task, actingUserID)
	if err != nil {
		return 0, err
	}

	reminderDate := p.calendar.ReminderDate(*task.DueDate, threshold)
	assignedBy := actingUserID
	if assignedBy == "" {
		assignedBy = task.CreatedBy
	}

	var (
		created int
		errs    []error
	)
	for _, recipient := range recipients {
		exists, err := p.reminderRepo.Exists(ctx, task.ID, recipient, reminderDate)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if exists {
			continue
		}

		reminder := p.automaticReminder(task, recipient, assignedBy, threshold, reminderDate)
		err = p.reminderRepo.CreateIfAbsent(ctx, reminder)
		switch {
		case errors.Is(err, entity.ErrAlreadyExists):
			continue
		case err != nil:
			p.logger.Error("[POLICY] Failed to create reminder: task=%s user=%s threshold=%d: %v", task.ID, recipient, threshold, err)
			errs = append(errs, err)
			continue
		}
		created++
	}

	if created > 0 {
		p.logger.Info("[POLICY] Created %d reminder(s) for task %s at threshold %d", created, task.ID, threshold)
	}
	return created, errors.Join(errs...)
}

func (p *reminderPolicy) automaticReminder(task *entity.Task, recipient, assignedBy string, threshold int, reminderDate time.Time) *entity.Reminder {
	reminderType := entity.ReminderTypeDueSoon
	if threshold == 0 {
		reminderType = entity.ReminderTypeDueToday
	}

	return &entity.Reminder{
		Title:          thresholdTitle(task.Title, threshold),
		Description:    fmt.Sprintf("%q is due on %s.", task.Title, task.DueDate.In(p.calendar.Location()).Format("Mon, 02 Jan 2006")),
		Type:           reminderType,
		Priority:       entity.PriorityForThreshold(threshold),
		Status:         entity.ReminderStatusUnread,
		DueDate:        *task.DueDate,
		ReminderDate:   reminderDate,
		TaskID:         task.ID,
		AssignedTo:     recipient,
		AssignedBy:     assignedBy,
		TeamID:         task.TeamID,
		OrganizationID: task.OrganizationID,
		Metadata: map[string]interface{}{
			"threshold":  threshold,
			"source":     "automatic",
			"task_title": task.Title,
		},
	}
}

func thresholdTitle(taskTitle string, threshold int) string {
	switch threshold {
	case 0:
		return fmt.Sprintf("Task due today: %s", taskTitle)
	case 1:
		return fmt.Sprintf("Task due tomorrow: %s", taskTitle)
	default:
		return fmt.Sprintf("Task due in %d days: %s", threshold, taskTitle)
	}
}

func (p *reminderPolicy) SendManualReminder(ctx context.Context, input ManualReminderInput) (*ManualReminderResult, error) {
	if strings.TrimSpace(input.TaskID) == "" {
		return nil, entity.NewValidationError("task_id", "is required")
	}
	if input.DaysThreshold < 0 {
		return nil, entity.NewValidationError("days_threshold", "must not be negative")
	}

	task, err := p.taskRepo.GetTask(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}
	if err := p.authorizeManual(ctx, task, input.Actor); err != nil {
		return nil, err
	}

	recipients, err := p.resolver.Resolve(ctx, task, input.Actor.UserID)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	dueDate := now.AddDate(0, 0, input.DaysThreshold)
	if task.DueDate != nil {
		dueDate = *task.DueDate
	}
	description := strings.TrimSpace(input.Message)
	if description == "" {
		description = fmt.Sprintf("%q is due in %d day(s).", task.Title, input.DaysThreshold)
	}

	result := &ManualReminderResult{Reminders: make([]entity.Reminder, 0, len(recipients))}
	var notified []string
	for _, recipient := range recipients {
		reminder := &entity.Reminder{
			Title:          fmt.Sprintf("Reminder: %s", task.Title),
			Description:    description,
			Type:           entity.ReminderTypeManual,
			Priority:       entity.PriorityForThreshold(input.DaysThreshold),
			Status:         entity.ReminderStatusUnread,
			DueDate:        dueDate,
			ReminderDate:   now,
			TaskID:         task.ID,
			AssignedTo:     recipient,
			AssignedBy:     input.Actor.UserID,
			TeamID:         task.TeamID,
			OrganizationID: task.OrganizationID,
			Metadata: map[string]interface{}{
				"threshold":  input.DaysThreshold,
				"source":     "manual",
				"task_title": task.Title,
			},
		}
		if err := p.reminderRepo.Create(ctx, reminder); err != nil {
			p.logger.Error("[POLICY] Failed to create manual reminder: task=%s user=%s: %v", task.ID, recipient, err)
			result.Skipped = append(result.Skipped, recipient)
			continue
		}
		result.Reminders = append(result.Reminders, *reminder)
		notified = append(notified, recipient)
	}
	result.Created = len(result.Reminders)

	if len(notified) > 0 && p.notifier != nil {
		fanout, err := p.notifier.CreateUserNotification(ctx, UserNotificationInput{
			Title:        fmt.Sprintf("Reminder: %s", task.Title),
			Description:  description,
			RecipientIDs: notified,
			Type:         entity.NotificationNormal,
			Actor: entity.Actor{
				UserID:         input.Actor.UserID,
				Role:           input.Actor.Role,
				OrganizationID: task.OrganizationID,
			},
		})
		if err != nil {
			p.logger.Warn("[POLICY] Manual reminder notification failed for task %s: %v", task.ID, err)
		}
		result.Notification = fanout
	}

	p.logger.Info("[POLICY] Manual reminder for task %s by %s: %d reminder(s)", task.ID, input.Actor.UserID, result.Created)
	return result, nil
}

// authorizeManual allows the task creator, the assignee, the team lead and
// active team members. Every other caller, including one from another
// organization, gets ErrPermission.
func (p *reminderPolicy) authorizeManual(ctx context.Context, task *entity.Task, actor entity.Actor) error {
	denied := fmt.Errorf("task %s: %w", task.ID, entity.ErrPermission)
	if actor.OrganizationID != "" && actor.OrganizationID != task.OrganizationID {
		return denied
	}

	if task.CreatedBy == actor.UserID {
		return nil
	}
	if task.HasAssignee() && *task.AssigneeID == actor.UserID {
		return nil
	}
	if !task.HasTeam() {
		return denied
	}

	team, err := p.taskRepo.GetTeam(ctx, *task.TeamID)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return err
	}
	if team != nil && team.IsLead(actor.UserID) {
		return nil
	}

	member, err := p.taskRepo.IsActiveTeamMember(ctx, *task.TeamID, actor.UserID)
	if err != nil {
		return err
	}
	if !member {
		return denied
	}
	return nil
}
