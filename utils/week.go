package utils

import (
	"time"
)

// WeekStartAt returns the Sunday 00:00:00.000 (local time) of the week
// containing t. Sunday input returns the same day at midnight.
func WeekStartAt(t time.Time) time.Time {
	daysBack := int(t.Weekday()) // Sunday = 0
	d := t.AddDate(0, 0, -daysBack)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// WeekEndAt returns the Saturday 23:59:59.999 (local time) of the week
// containing t.
func WeekEndAt(t time.Time) time.Time {
	start := WeekStartAt(t)
	return start.AddDate(0, 0, 6).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)
}

// WeekStart returns the start of the current week.
func WeekStart() time.Time {
	return WeekStartAt(time.Now())
}

// WeekEnd returns the end of the current week.
func WeekEnd() time.Time {
	return WeekEndAt(time.Now())
}
