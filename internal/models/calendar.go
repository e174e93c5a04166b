package models

import "time"

// YearStart returns Jan 1 00:00 UTC of the given year.
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the midnight that closes t's day, i.e. the start of the next day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

func DaysInYear(year int) int {
	return int(YearStart(year+1).Sub(YearStart(year)).Hours() / 24)
}

// DaysElapsed counts calendar days of year up to and including now's day.
// Years before now's year are complete, years after it have not started.
func DaysElapsed(year int, now time.Time) int {
	now = now.UTC()
	switch {
	case year < now.Year():
		return DaysInYear(year)
	case year > now.Year():
		return 0
	default:
		return now.YearDay()
	}
}

// DaySlice is the part of an interval falling on one day of the year.
type DaySlice struct {
	Day     int // zero-based day of year
	Minutes float64
}

// SplitByDay cuts [start, end) at every midnight. Slices that fall outside
// year are dropped.
func SplitByDay(year int, start, end time.Time) []DaySlice {
	start, end = start.UTC(), end.UTC()
	var out []DaySlice
	for start.Before(end) {
		next := EndOfDay(start)
		if next.After(end) {
			next = end
		}
		if start.Year() == year {
			out = append(out, DaySlice{Day: start.YearDay() - 1, Minutes: next.Sub(start).Minutes()})
		}
		start = next
	}
	return out
}

// WeekdayOffset is the weekday of Jan 1 counted from Monday = 0.
func WeekdayOffset(year int) int {
	return (int(YearStart(year).Weekday()) + 6) % 7
}
