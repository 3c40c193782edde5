package persistent

import (
	"context"
	"errors"
	"testing"
	"time"

	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_MainVisibility(t *testing.T) {
	repo := NewNotificationRepository(testutil.NewDB(t))
	ctx := context.Background()
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	otherOrg := "00000000-0000-0000-0000-0000000000a2"

	live := &entity.MainNotification{
		Title:            "Maintenance tonight",
		NotificationType: entity.NotificationAlert,
		OrganizationID:   orgID,
		IsActive:         true,
		ExpiryDate:       now.Add(24 * time.Hour),
		CreatedBy:        ownerID,
	}
	expired := &entity.MainNotification{
		Title:            "Old news",
		NotificationType: entity.NotificationNormal,
		OrganizationID:   orgID,
		IsActive:         true,
		ExpiryDate:       now.Add(-time.Hour),
		CreatedBy:        ownerID,
	}
	foreign := &entity.MainNotification{
		Title:            "Other org",
		NotificationType: entity.NotificationGood,
		OrganizationID:   otherOrg,
		IsActive:         true,
		ExpiryDate:       now.Add(24 * time.Hour),
		CreatedBy:        otherID,
	}
	for _, n := range []*entity.MainNotification{live, expired, foreign} {
		require.NoError(t, repo.CreateMain(ctx, n))
		assert.NotEmpty(t, n.ID)
	}

	list, total, err := repo.ListMain(ctx, orgID, now, entity.MainNotificationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, live.ID, list[0].ID)

	list, _, err = repo.ListMain(ctx, orgID, now, entity.MainNotificationFilter{IncludeExpired: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = repo.GetMain(ctx, foreign.ID, orgID)
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	require.NoError(t, repo.DeactivateMain(ctx, live.ID, orgID))
	list, _, err = repo.ListMain(ctx, orgID, now, entity.MainNotificationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	err = repo.DeactivateMain(ctx, foreign.ID, orgID)
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	stats, err := repo.MainStats(ctx, orgID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(0), stats.Active)
	assert.Equal(t, int64(1), stats.Expired)
	assert.Equal(t, int64(1), stats.ByType[string(entity.NotificationAlert)])
}

func TestNotificationRepository_UserNotifications(t *testing.T) {
	repo := NewNotificationRepository(testutil.NewDB(t))
	ctx := context.Background()

	batch := []*entity.UserNotification{
		{Title: "a", UserID: ownerID, NotificationType: entity.NotificationNormal, OrganizationID: orgID},
		{Title: "b", UserID: ownerID, NotificationType: entity.NotificationAlert, OrganizationID: orgID},
		{Title: "c", UserID: ownerID, NotificationType: entity.NotificationNormal, OrganizationID: orgID},
		{Title: "d", UserID: otherID, NotificationType: entity.NotificationGood, OrganizationID: orgID},
	}
	created, err := repo.CreateUserBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, created, 4)
	for _, n := range created {
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.IsSeen)
	}

	unread, err := repo.CountUnread(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	_, err = repo.MarkUserRead(ctx, created[3].ID, ownerID)
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	seen, err := repo.MarkUserRead(ctx, created[0].ID, ownerID)
	require.NoError(t, err)
	assert.True(t, seen.IsSeen)

	notSeen := false
	list, total, err := repo.ListUser(ctx, ownerID, entity.UserNotificationFilter{IsSeen: &notSeen})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, _, err = repo.ListUser(ctx, ownerID, entity.UserNotificationFilter{Type: entity.NotificationAlert})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)

	n, err := repo.MarkAllUserRead(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.MarkAllUserRead(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	stats, err := repo.UserStats(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.Read)
	assert.Equal(t, int64(0), stats.Unread)
	assert.Equal(t, int64(2), stats.ByType[string(entity.NotificationNormal)])

	other, err := repo.CountUnread(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestNotificationRepository_CreateUserBatchFallsBackPerRow(t *testing.T) {
	repo := NewNotificationRepository(testutil.NewDB(t))
	ctx := context.Background()

	first, err := repo.CreateUserBatch(ctx, []*entity.UserNotification{
		{Title: "first", UserID: ownerID, NotificationType: entity.NotificationNormal, OrganizationID: orgID},
	})
	require.NoError(t, err)
	require.Len(t, first, 1)

	batch := []*entity.UserNotification{
		{Title: "a", UserID: otherID, NotificationType: entity.NotificationNormal, OrganizationID: orgID},
		{ID: first[0].ID, Title: "clash", UserID: otherID, NotificationType: entity.NotificationNormal, OrganizationID: orgID},
		{Title: "c", UserID: otherID, NotificationType: entity.NotificationGood, OrganizationID: orgID},
	}
	created, err := repo.CreateUserBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, created, len(batch)-1)
	assert.Equal(t, "a", created[0].Title)
	assert.Equal(t, "c", created[1].Title)

	unread, err := repo.CountUnread(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	// Every row failing surfaces the error.
	created, err = repo.CreateUserBatch(ctx, []*entity.UserNotification{
		{ID: first[0].ID, Title: "clash", UserID: otherID, NotificationType: entity.NotificationNormal, OrganizationID: orgID},
	})
	assert.Error(t, err)
	assert.Empty(t, created)
}

func TestNotificationRepository_CreateUserBatchEmpty(t *testing.T) {
	repo := NewNotificationRepository(testutil.NewDB(t))

	created, err := repo.CreateUserBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, created)
}
