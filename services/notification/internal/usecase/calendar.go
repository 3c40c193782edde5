package usecase

import (
	"sort"
	"time"
)

// ReminderCalendar does the calendar-day arithmetic for thresholds in one
// location. A threshold t fires on the single day where dueDay - t == today,
// and its reminder is pinned to the configured hour of that day.
type ReminderCalendar struct {
	loc        *time.Location
	hour       int
	thresholds []int
}

func NewReminderCalendar(loc *time.Location, hour int, thresholds []int) *ReminderCalendar {
	if loc == nil {
		loc = time.UTC
	}
	sorted := append([]int(nil), thresholds...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	return &ReminderCalendar{loc: loc, hour: hour, thresholds: sorted}
}

// Thresholds returns the thresholds in descending order.
func (c *ReminderCalendar) Thresholds() []int {
	return append([]int(nil), c.thresholds...)
}

func (c *ReminderCalendar) Location() *time.Location {
	return c.loc
}

// civil strips t down to its date in the calendar's location, expressed in
// UTC so that day differences are not skewed by DST changes.
func (c *ReminderCalendar) civil(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysRemaining is the number of calendar days from now until due. It is
// negative once the due day has passed.
func (c *ReminderCalendar) DaysRemaining(due, now time.Time) int {
	return int(c.civil(due).Sub(c.civil(now)).Hours() / 24)
}

// ReminderDate returns the instant a threshold's reminder is pinned to.
func (c *ReminderCalendar) ReminderDate(due time.Time, threshold int) time.Time {
	y, m, d := due.In(c.loc).Date()
	return time.Date(y, m, d-threshold, c.hour, 0, 0, 0, c.loc).UTC()
}

// DueWindow is the half-open range of due dates that fall on today+threshold.
func (c *ReminderCalendar) DueWindow(now time.Time, threshold int) (time.Time, time.Time) {
	y, m, d := now.In(c.loc).Date()
	from := time.Date(y, m, d+threshold, 0, 0, 0, 0, c.loc)
	to := time.Date(y, m, d+threshold+1, 0, 0, 0, 0, c.loc)
	return from.UTC(), to.UTC()
}

// ActiveThreshold returns the threshold that fires today for a task due at
// due, if any.
func (c *ReminderCalendar) ActiveThreshold(due, now time.Time) (int, bool) {
	days := c.DaysRemaining(due, now)
	for _, t := range c.thresholds {
		if t == days {
			return t, true
		}
	}
	return 0, false
}

// Today formats now as a date in the calendar's location.
func (c *ReminderCalendar) Today(now time.Time) string {
	return now.In(c.loc).Format("2006-01-02")
}
