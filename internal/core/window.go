package core

import "time"

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether Start <= t < End.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ContainsDate checks the local midnight of d against the window.
func (w Window) ContainsDate(d Date) bool {
	return w.Contains(d.In(w.Start.Location()))
}

// StartOfDay returns midnight of now's calendar day in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// TodayWindow spans the current calendar day, boundary to boundary.
func TodayWindow(now time.Time) Window {
	start := StartOfDay(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow is the rolling week: it starts weekday*24h before the current
// instant (Sunday = 0), not at a calendar-aligned midnight, and runs to the
// end of today.
func WeekWindow(now time.Time) Window {
	start := now.Add(-time.Duration(now.Weekday()) * 24 * time.Hour)
	return Window{Start: start, End: StartOfDay(now).AddDate(0, 0, 1)}
}

// MonthWindow spans the current calendar month.
func MonthWindow(now time.Time) Window {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// YearWindow spans the current calendar year.
func YearWindow(now time.Time) Window {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(1, 0, 0)}
}

// WindowFor returns the window for f; ok is false for AnyDate.
func WindowFor(f DateFilter, now time.Time) (w Window, ok bool) {
	switch f {
	case Today:
		return TodayWindow(now), true
	case ThisWeek:
		return WeekWindow(now), true
	case ThisMonth:
		return MonthWindow(now), true
	case ThisYear:
		return YearWindow(now), true
	default:
		return Window{}, false
	}
}
