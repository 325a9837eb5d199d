// internal/planner/week.go
package planner

import "time"

// WeekBounds returns the Monday on or before t and the Sunday six days after
// it, both at midnight UTC. Only the calendar date of t matters; the clock
// time and zone offset are discarded.
//
// time.Weekday numbers Sunday as 0, which would pull a Sunday back to the
// previous week's Monday if used directly. Sunday is treated as weekday 7 so
// the Monday anchor never shifts.
func WeekBounds(t time.Time) (start, end time.Time) {
	year, month, day := t.Date()
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}

	start = date.AddDate(0, 0, -(weekday - 1))
	end = start.AddDate(0, 0, 6)
	return start, end
}

// ISODate renders t as an ISO 8601 calendar date (YYYY-MM-DD).
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
