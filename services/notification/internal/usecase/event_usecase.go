package usecase

import (
	"context"
	"errors"
	"fmt"

	"task-notify/pkg/logger"
	"task-notify/pkg/queue"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/repo/persistent"
)

// EventUseCase reacts to task and team changes published by the task
// service.
type EventUseCase interface {
	HandleTaskEvent(ctx context.Context, event queue.TaskEvent) error
}

type eventUseCase struct {
	taskRepo     persistent.TaskRepository
	reminderRepo persistent.ReminderRepository
	policy       ReminderPolicy
	resolver     RecipientResolver
	notifier     UserNotifier
	logger       *logger.Logger
}

func NewEventUseCase(
	taskRepo persistent.TaskRepository,
	reminderRepo persistent.ReminderRepository,
	policy ReminderPolicy,
	resolver RecipientResolver,
	notifier UserNotifier,
	logger *logger.Logger,
) EventUseCase {
	return &eventUseCase{
		taskRepo:     taskRepo,
		reminderRepo: reminderRepo,
		policy:       policy,
		resolver:     resolver,
		notifier:     notifier,
		logger:       logger,
	}
}

func (uc *eventUseCase) HandleTaskEvent(ctx context.Context, event queue.TaskEvent) error {
	uc.logger.Info("[EVENTS] Handling %s: task=%s team=%s actor=%s", event.Type, event.TaskID, event.TeamID, event.ActorID)

	switch event.Type {
	case queue.EventTaskCreated:
		return uc.taskChanged(ctx, event, true)
	case queue.EventTaskUpdated:
		return uc.taskChanged(ctx, event, false)
	case queue.EventTaskDeleted:
		return uc.taskDeleted(ctx, event)
	case queue.EventTeamMembersChanged:
		return uc.teamChanged(ctx, event)
	default:
		uc.logger.Warn("[EVENTS] Ignoring unknown event type %q", event.Type)
		return nil
	}
}

func (uc *eventUseCase) taskChanged(ctx context.Context, event queue.TaskEvent, created bool) error {
	if event.TaskID == "" {
		return entity.NewValidationError("task_id", "is required")
	}

	task, err := uc.taskRepo.GetTask(ctx, event.TaskID)
	if errors.Is(err, entity.ErrNotFound) {
		uc.logger.Warn("[EVENTS] Task %s no longer exists, skipping %s", event.TaskID, event.Type)
		return nil
	}
	if err != nil {
		return err
	}

	n, err := uc.policy.ComputeReminders(ctx, task, event.ActorID)
	if err != nil {
		return fmt.Errorf("compute reminders for task %s: %w", task.ID, err)
	}
	uc.logger.Info("[EVENTS] Task %s: %d reminder(s) created", task.ID, n)

	if created {
		uc.notifyAssigned(ctx, task, event.ActorID)
	}
	return nil
}

// notifyAssigned tells new recipients about the task. Failures are logged;
// the event itself has already been handled.
func (uc *eventUseCase) notifyAssigned(ctx context.Context, task *entity.Task, actorID string) {
	recipients, err := uc.resolver.Resolve(ctx, task, actorID)
	if err != nil {
		uc.logger.Warn("[EVENTS] Could not resolve recipients for task %s: %v", task.ID, err)
		return
	}
	if len(recipients) == 0 {
		return
	}

	_, err = uc.notifier.CreateUserNotification(ctx, UserNotificationInput{
		Title:        "New task assigned",
		Description:  fmt.Sprintf("You have been assigned to %q.", task.Title),
		RecipientIDs: recipients,
		Type:         entity.NotificationGood,
		Actor:        entity.Actor{UserID: actorID, OrganizationID: task.OrganizationID},
	})
	if err != nil {
		uc.logger.Warn("[EVENTS] Assignment notification for task %s failed: %v", task.ID, err)
	}
}

func (uc *eventUseCase) taskDeleted(ctx context.Context, event queue.TaskEvent) error {
	if event.TaskID == "" {
		return entity.NewValidationError("task_id", "is required")
	}
	n, err := uc.reminderRepo.SoftDeleteByTask(ctx, event.TaskID)
	if err != nil {
		return err
	}
	uc.logger.Info("[EVENTS] Task %s deleted: %d reminder(s) removed", event.TaskID, n)
	return nil
}

func (uc *eventUseCase) teamChanged(ctx context.Context, event queue.TaskEvent) error {
	if event.TeamID == "" {
		return entity.NewValidationError("team_id", "is required")
	}

	tasks, err := uc.taskRepo.ListOpenTasksForTeam(ctx, event.TeamID)
	if err != nil {
		return err
	}

	var (
		created int
		errs    []error
	)
	for i := range tasks {
		n, err := uc.policy.ComputeReminders(ctx, &tasks[i], event.ActorID)
		created += n
		if err != nil {
			uc.logger.Error("[EVENTS] Team %s task %s: %v", event.TeamID, tasks[i].ID, err)
			errs = append(errs, err)
		}
	}
	uc.logger.Info("[EVENTS] Team %s changed: %d open task(s), %d reminder(s) created", event.TeamID, len(tasks), created)
	return errors.Join(errs...)
}
