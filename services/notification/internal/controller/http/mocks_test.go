package http

import (
	"context"

	"task-notify/pkg/queue"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockReminderUseCase struct {
	mock.Mock
}

func (m *MockReminderUseCase) ListReminders(ctx context.Context, userID string, filter entity.ReminderFilter) (*entity.ReminderPage, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReminderPage), args.Error(1)
}

func (m *MockReminderUseCase) GetReminder(ctx context.Context, userID, id string) (*entity.Reminder, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Reminder), args.Error(1)
}

func (m *MockReminderUseCase) MarkAsRead(ctx context.Context, userID, id string) (*entity.Reminder, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Reminder), args.Error(1)
}

func (m *MockReminderUseCase) Dismiss(ctx context.Context, userID, id string) (*entity.Reminder, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Reminder), args.Error(1)
}

func (m *MockReminderUseCase) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockReminderUseCase) Stats(ctx context.Context, userID string) (*entity.ReminderStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReminderStats), args.Error(1)
}

var _ usecase.ReminderUseCase = (*MockReminderUseCase)(nil)

type MockReminderPolicy struct {
	mock.Mock
}

func (m *MockReminderPolicy) ComputeReminders(ctx context.Context, task *entity.Task, actingUserID string) (int, error) {
	args := m.Called(ctx, task, actingUserID)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderPolicy) RemindForThreshold(ctx context.Context, task *entity.Task, threshold int, actingUserID string) (int, error) {
	args := m.Called(ctx, task, threshold, actingUserID)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderPolicy) SendManualReminder(ctx context.Context, input usecase.ManualReminderInput) (*usecase.ManualReminderResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ManualReminderResult), args.Error(1)
}

var _ usecase.ReminderPolicy = (*MockReminderPolicy)(nil)

type MockNotificationUseCase struct {
	mock.Mock
}

func (m *MockNotificationUseCase) CreateMainNotification(ctx context.Context, input usecase.MainNotificationInput) (*entity.MainNotification, *entity.FanoutResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.MainNotification), args.Get(1).(*entity.FanoutResult), args.Error(2)
}

func (m *MockNotificationUseCase) GetMainNotification(ctx context.Context, actor entity.Actor, id string) (*entity.MainNotification, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MainNotification), args.Error(1)
}

func (m *MockNotificationUseCase) ListMainNotifications(ctx context.Context, actor entity.Actor, filter entity.MainNotificationFilter) ([]entity.MainNotification, int64, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.MainNotification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationUseCase) DeactivateMainNotification(ctx context.Context, actor entity.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockNotificationUseCase) MainNotificationStats(ctx context.Context, actor entity.Actor) (*entity.MainNotificationStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MainNotificationStats), args.Error(1)
}

func (m *MockNotificationUseCase) CreateUserNotification(ctx context.Context, input usecase.UserNotificationInput) (*entity.FanoutResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FanoutResult), args.Error(1)
}

func (m *MockNotificationUseCase) ListUserNotifications(ctx context.Context, userID string, filter entity.UserNotificationFilter) ([]entity.UserNotification, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.UserNotification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationUseCase) MarkAsRead(ctx context.Context, userID, id string) (*entity.UserNotification, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserNotification), args.Error(1)
}

func (m *MockNotificationUseCase) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUseCase) UserNotificationStats(ctx context.Context, userID string) (*entity.UserNotificationStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserNotificationStats), args.Error(1)
}

var _ usecase.NotificationUseCase = (*MockNotificationUseCase)(nil)

type MockEventUseCase struct {
	mock.Mock
}

func (m *MockEventUseCase) HandleTaskEvent(ctx context.Context, event queue.TaskEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) RunSweep(ctx context.Context) (*entity.SweepReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SweepReport), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withUser stands in for the auth middleware.
func withUser(userID, orgID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("organization_id", orgID)
		c.Set("role", role)
		c.Next()
	}
}
