package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreGooseFiles(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.Len(t, names, 3)

	for _, name := range names {
		body, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestRemindersHavePartialUniqueIndex(t *testing.T) {
	body, err := fs.ReadFile(FS, "00002_create_reminders.sql")
	require.NoError(t, err)

	sql := string(body)
	idx := strings.Index(sql, "idx_reminders_live_unique")
	require.NotEqual(t, -1, idx)
	assert.Contains(t, sql[idx:], "WHERE is_deleted = FALSE")
}
