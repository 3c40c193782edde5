package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminderCalendar_DaysRemaining(t *testing.T) {
	cal := NewReminderCalendar(time.UTC, 9, []int{7, 3, 1, 0})
	now := time.Date(2025, 3, 6, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, cal.DaysRemaining(time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 1, cal.DaysRemaining(time.Date(2025, 3, 7, 0, 15, 0, 0, time.UTC), now))
	assert.Equal(t, 7, cal.DaysRemaining(time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -2, cal.DaysRemaining(time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC), now))
}

func TestReminderCalendar_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	cal := NewReminderCalendar(tokyo, 9, []int{7, 3, 1, 0})

	// 16:00 UTC on the 6th is already the 7th in Tokyo.
	now := time.Date(2025, 3, 6, 16, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 8, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, cal.DaysRemaining(due, now))

	// Due on the 8th in Tokyo: the 1-day reminder is 09:00 JST on the 7th.
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), cal.ReminderDate(due, 1))
	assert.Equal(t, "2025-03-07", cal.Today(now))

	from, to := cal.DueWindow(now, 1)
	assert.Equal(t, time.Date(2025, 3, 7, 15, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC), to)
}

func TestReminderCalendar_ActiveThreshold(t *testing.T) {
	cal := NewReminderCalendar(time.UTC, 9, []int{0, 1, 3, 7})
	now := time.Date(2025, 3, 6, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		due    time.Time
		want   int
		active bool
	}{
		{"due today", time.Date(2025, 3, 6, 18, 0, 0, 0, time.UTC), 0, true},
		{"due tomorrow", time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC), 1, true},
		{"two days out", time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC), 0, false},
		{"three days out", time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC), 3, true},
		{"a week out", time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC), 7, true},
		{"overdue", time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cal.ActiveThreshold(tt.due, now)
			assert.Equal(t, tt.active, ok)
			if tt.active {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	assert.Equal(t, []int{7, 3, 1, 0}, cal.Thresholds())
}
