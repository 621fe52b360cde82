package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekWindowIsRolling(t *testing.T) {
	// Wednesday 15:00: the week starts Sunday 15:00, not Sunday midnight.
	now := time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)
	require.Equal(t, time.Wednesday, now.Weekday())

	w := WeekWindow(now)
	assert.Equal(t, time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), w.End)

	assert.False(t, w.ContainsDate(NewDate(2024, 6, 2)), "Sunday midnight precedes the rolling start")
	assert.True(t, w.ContainsDate(NewDate(2024, 6, 3)))
	assert.True(t, w.ContainsDate(NewDate(2024, 6, 5)))
	assert.False(t, w.ContainsDate(NewDate(2024, 6, 6)))
}

func TestWeekWindowOnSunday(t *testing.T) {
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	w := WeekWindow(now)
	assert.Equal(t, now, w.Start)
	assert.False(t, w.ContainsDate(NewDate(2024, 6, 2)))
}

func TestCalendarWindows(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 6, 15, 23, 30, 0, 0, loc)

	today := TodayWindow(now)
	assert.True(t, today.ContainsDate(NewDate(2024, 6, 15)))
	assert.False(t, today.ContainsDate(NewDate(2024, 6, 14)))
	assert.True(t, today.Contains(time.Date(2024, 6, 15, 0, 0, 0, 0, loc)))
	assert.False(t, today.Contains(time.Date(2024, 6, 16, 0, 0, 0, 0, loc)))

	month := MonthWindow(now)
	assert.True(t, month.ContainsDate(NewDate(2024, 6, 1)))
	assert.True(t, month.ContainsDate(NewDate(2024, 6, 30)))
	assert.False(t, month.ContainsDate(NewDate(2024, 5, 31)))
	assert.False(t, month.ContainsDate(NewDate(2024, 7, 1)))

	year := YearWindow(now)
	assert.True(t, year.ContainsDate(NewDate(2024, 1, 1)))
	assert.False(t, year.ContainsDate(NewDate(2023, 12, 31)))
	assert.True(t, year.ContainsDate(NewDate(2024, 12, 31)))
	assert.False(t, year.ContainsDate(NewDate(2025, 1, 1)))
}

func TestWindowFor(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	_, ok := WindowFor(AnyDate, now)
	assert.False(t, ok)
	for _, f := range []DateFilter{Today, ThisWeek, ThisMonth, ThisYear} {
		w, ok := WindowFor(f, now)
		assert.True(t, ok, f)
		assert.True(t, w.Contains(now), f)
	}
}
