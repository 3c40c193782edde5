package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policyNow = time.Date(2025, 3, 6, 10, 0, 0, 0, time.UTC)

func TestReminderPolicy_ShipReport(t *testing.T) {
	f := newFixture(t, policyNow)
	ctx := context.Background()

	author := testutil.CreateUser(t, f.db, orgID, "author")
	assignee := testutil.CreateUser(t, f.db, orgID, "assignee")
	row := testutil.CreateTask(t, f.db, orgID, author.ID, "Ship report",
		testutil.WithAssignee(assignee.ID),
		testutil.WithDueDate(policyNow.Add(24*time.Hour)))

	created, err := f.policy.ComputeReminders(ctx, f.task(t, row.ID), author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	list := f.liveReminders(t, assignee.ID)
	require.Len(t, list, 1)
	r := list[0]
	assert.Equal(t, entity.ReminderStatusUnread, r.Status)
	assert.Equal(t, assignee.ID, r.AssignedTo)
	assert.Equal(t, author.ID, r.AssignedBy)
	assert.Equal(t, entity.ReminderTypeDueSoon, r.Type)
	assert.Equal(t, entity.PriorityHigh, r.Priority)
	assert.Equal(t, "Task due tomorrow: Ship report", r.Title)
	assert.Equal(t, float64(1), r.Metadata["threshold"])
	assert.True(t, r.ReminderDate.Equal(time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC)))

	created, err = f.policy.ComputeReminders(ctx, f.task(t, row.ID), author.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, f.liveReminders(t, assignee.ID), 1)
}

func TestReminderPolicy_NoThresholdToday(t *testing.T) {
	f := newFixture(t, policyNow)
	ctx := context.Background()

	author := testutil.CreateUser(t, f.db, orgID, "author")
	assignee := testutil.CreateUser(t, f.db, orgID, "assignee")

	for _, due := range []time.Time{
		policyNow.Add(48 * time.Hour),
		policyNow.Add(-48 * time.Hour),
	} {
		row := testutil.CreateTask(t, f.db, orgID, author.ID, "later", testutil.WithAssignee(assignee.ID), testutil.WithDueDate(due))
		created, err := f.policy.ComputeReminders(ctx, f.task(t, row.ID), author.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	}

	undated := testutil.CreateTask(t, f.db, orgID, author.ID, "undated", testutil.WithAssignee(assignee.ID))
	created, err := f.policy.ComputeReminders(ctx, f.task(t, undated.ID), author.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestReminderPolicy_SelfAssignmentSuppressed(t *testing.T) {
	f := newFixture(t, policyNow)

	me := testutil.CreateUser(t, f.db, orgID, "me")
	row := testutil.CreateTask(t, f.db, orgID, me.ID, "mine", testutil.WithAssignee(me.ID), testutil.WithDueDate(policyNow))

	created, err := f.policy.ComputeReminders(context.Background(), f.task(t, row.ID), me.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestReminderPolicy_TeamExpansionExcludesActor(t *testing.T) {
	f := newFixture(t, policyNow)
	ctx := context.Background()

	var members []string
	for _, name := range []string{"a", "b", "c", "d"} {
		members = append(members, testutil.CreateUser(t, f.db, orgID, name).ID)
	}
	actor := members[0]
	team := testutil.CreateTeam(t, f.db, orgID, nil, members...)
	row := testutil.CreateTask(t, f.db, orgID, actor, "Team work",
		testutil.WithTeam(team.ID),
		testutil.WithDueDate(policyNow.Add(3*24*time.Hour)))

	created, err := f.policy.ComputeReminders(ctx, f.task(t, row.ID), actor)
	require.NoError(t, err)
	assert.Equal(t, len(members)-1, created)
	assert.Empty(t, f.liveReminders(t, actor))
	for _, id := range members[1:] {
		list := f.liveReminders(t, id)
		require.Len(t, list, 1)
		assert.Equal(t, entity.PriorityMedium, list[0].Priority)
		require.NotNil(t, list[0].TeamID)
		assert.Equal(t, team.ID, *list[0].TeamID)
	}
}

func TestReminderPolicy_ConcurrentComputeIsIdempotent(t *testing.T) {
	f := newFixture(t, policyNow)
	ctx := context.Background()

	author := testutil.CreateUser(t, f.db, orgID, "author")
	assignee := testutil.CreateUser(t, f.db, orgID, "assignee")
	row := testutil.CreateTask(t, f.db, orgID, author.ID, "race", testutil.WithAssignee(assignee.ID), testutil.WithDueDate(policyNow))
	task := f.task(t, row.ID)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.policy.ComputeReminders(ctx, task, author.ID)
			assert.NoError(t, err)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, total)
	assert.Len(t, f.liveReminders(t, assignee.ID), 1)
}

func TestReminderPolicy_ManualReminderTeamOfFive(t *testing.T) {
	f := newFixture(t, policyNow)
	ctx := context.Background()

	creator := testutil.CreateUser(t, f.db, orgID, "creator")
	var members []string
	for _, name := range []string{"m1", "m2", "m3", "m4", "m5"} {
		members = append(members, testutil.CreateUser(t, f.db, orgID, name).ID)
	}
	team := testutil.CreateTeam(t, f.db, orgID, nil, members...)
	row := testutil.CreateTask(t, f.db, orgID, creator.ID, "Quarterly plan",
		testutil.WithTeam(team.ID),
		testutil.WithDueDate(policyNow.Add(3*24*time.Hour)))

	// Existing automatic reminders do not suppress manual ones.
	auto, err := f.policy.ComputeReminders(ctx, f.task(t, row.ID), creator.ID)
	require.NoError(t, err)
	require.Equal(t, 5, auto)

	result, err := f.policy.SendManualReminder(ctx, ManualReminderInput{
		TaskID:        row.ID,
		DaysThreshold: 3,
		Message:       "check progress",
		Actor:         entity.Actor{UserID: creator.ID, OrganizationID: orgID},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Created)
	require.NotNil(t, result.Notification)
	assert.Equal(t, 5, result.Notification.Created)

	for _, id := range members {
		list := f.liveReminders(t, id)
		require.Len(t, list, 2)
		unread, err := f.notifications.CountUnread(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), unread)
		assert.Len(t, f.pusher.Events(id), 1)
	}
	assert.Equal(t, "check progress", result.Reminders[0].Description)
	assert.Equal(t, entity.ReminderTypeManual, result.Reminders[0].Type)

	// A member sending the same reminder reaches the other four.
	f.now = f.now.Add(time.Minute)
	result, err = f.policy.SendManualReminder(ctx, ManualReminderInput{
		TaskID:        row.ID,
		DaysThreshold: 3,
		Message:       "check progress",
		Actor:         entity.Actor{UserID: members[0], OrganizationID: orgID},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created)
}

func TestReminderPolicy_ManualReminderReportsSkipped(t *testing.T) {
	f := newFixture(t, policyNow)
	ctx := context.Background()

	creator := testutil.CreateUser(t, f.db, orgID, "creator")
	assignee := testutil.CreateUser(t, f.db, orgID, "assignee")
	row := testutil.CreateTask(t, f.db, orgID, creator.ID, "Renew certificates",
		testutil.WithAssignee(assignee.ID),
		testutil.WithDueDate(policyNow.Add(24*time.Hour)))
	input := ManualReminderInput{
		TaskID:        row.ID,
		DaysThreshold: 1,
		Actor:         entity.Actor{UserID: creator.ID, OrganizationID: orgID},
	}

	result, err := f.policy.SendManualReminder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Skipped)

	// Same instant, same recipient: the live-row index rejects the second row.
	result, err = f.policy.SendManualReminder(ctx, input)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, []string{assignee.ID}, result.Skipped)
	assert.Nil(t, result.Notification)
	assert.Len(t, f.liveReminders(t, assignee.ID), 1)
}

func TestReminderPolicy_ManualReminderPermissions(t *testing.T) {
	f := newFixture(t, policyNow)
	ctx := context.Background()

	creator := testutil.CreateUser(t, f.db, orgID, "creator")
	lead := testutil.CreateUser(t, f.db, orgID, "lead")
	member := testutil.CreateUser(t, f.db, orgID, "member")
	former := testutil.CreateUser(t, f.db, orgID, "former")
	stranger := testutil.CreateUser(t, f.db, orgID, "stranger")
	team := testutil.CreateTeam(t, f.db, orgID, &lead.ID, member.ID, former.ID)
	testutil.DeactivateMember(t, f.db, team.ID, former.ID)
	row := testutil.CreateTask(t, f.db, orgID, creator.ID, "Audit", testutil.WithTeam(team.ID), testutil.WithDueDate(policyNow))

	send := func(userID, org string) error {
		_, err := f.policy.SendManualReminder(ctx, ManualReminderInput{
			TaskID: row.ID,
			Actor:  entity.Actor{UserID: userID, OrganizationID: org},
		})
		return err
	}

	assert.NoError(t, send(creator.ID, orgID))
	assert.NoError(t, send(lead.ID, orgID))
	assert.NoError(t, send(member.ID, orgID))
	assert.True(t, errors.Is(send(former.ID, orgID), entity.ErrPermission))
	assert.True(t, errors.Is(send(stranger.ID, orgID), entity.ErrPermission))
	assert.True(t, errors.Is(send(creator.ID, "00000000-0000-0000-0000-0000000000ff"), entity.ErrPermission))

	_, err := f.policy.SendManualReminder(ctx, ManualReminderInput{TaskID: "00000000-0000-0000-0000-000000000404", Actor: entity.Actor{UserID: creator.ID}})
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	_, err = f.policy.SendManualReminder(ctx, ManualReminderInput{Actor: entity.Actor{UserID: creator.ID}})
	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "task_id", verr.Field)

	_, err = f.policy.SendManualReminder(ctx, ManualReminderInput{TaskID: row.ID, DaysThreshold: -1, Actor: entity.Actor{UserID: creator.ID}})
	assert.True(t, errors.Is(err, entity.ErrValidationFailed))
}
