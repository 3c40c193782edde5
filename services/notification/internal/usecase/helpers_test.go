package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/repo/persistent"
	"task-notify/services/notification/internal/stream"
	"task-notify/services/notification/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const orgID = "00000000-0000-0000-0000-0000000000a1"

// fakePusher records pushes. With fail set it rejects every push.
type fakePusher struct {
	mu     sync.Mutex
	pushes map[string][]stream.Event
	fail   error
}

func newFakePusher() *fakePusher {
	return &fakePusher{pushes: make(map[string][]stream.Event)}
}

func (f *fakePusher) PushToUser(_ context.Context, userID string, event stream.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	f.pushes[userID] = append(f.pushes[userID], event)
	return 1, nil
}

func (f *fakePusher) Events(userID string) []stream.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stream.Event(nil), f.pushes[userID]...)
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "ERROR")
}

type fixture struct {
	db            *gorm.DB
	reminders     persistent.ReminderRepository
	notifications persistent.NotificationRepository
	tasks         persistent.TaskRepository
	pusher        *fakePusher
	calendar      *ReminderCalendar
	notifier      NotificationUseCase
	resolver      RecipientResolver
	policy        ReminderPolicy
	now           time.Time
}

// newFixture wires real repositories over SQLite with the clock pinned to now.
func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := &fixture{
		db:            db,
		reminders:     persistent.NewReminderRepository(db),
		notifications: persistent.NewNotificationRepository(db),
		tasks:         persistent.NewTaskRepository(db),
		pusher:        newFakePusher(),
		calendar:      NewReminderCalendar(time.UTC, 9, []int{7, 3, 1, 0}),
		now:           now,
	}
	clock := func() time.Time { return f.now }

	notifier := NewNotificationUseCase(f.notifications, f.tasks, f.pusher, 30*24*time.Hour, testLogger())
	notifier.(*notificationUseCase).now = clock
	f.notifier = notifier

	f.resolver = NewRecipientResolver(f.tasks)
	policy := NewReminderPolicy(f.reminders, f.tasks, f.resolver, f.notifier, f.calendar, testLogger())
	policy.(*reminderPolicy).now = clock
	f.policy = policy
	return f
}

func (f *fixture) task(t *testing.T, id string) *entity.Task {
	t.Helper()
	task, err := f.tasks.GetTask(context.Background(), id)
	require.NoError(t, err)
	return task
}

func (f *fixture) liveReminders(t *testing.T, userID string) []entity.Reminder {
	t.Helper()
	list, _, err := f.reminders.List(context.Background(), userID, entity.ReminderFilter{})
	require.NoError(t, err)
	return list
}
