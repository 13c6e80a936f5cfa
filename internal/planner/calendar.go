package planner

import "time"

// AddDays returns t shifted by n calendar days, keeping the wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfWeek returns Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	sinceMonday := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-sinceMonday, 0, 0, 0, 0, t.Location())
}

func EndOfWeek(t time.Time) time.Time {
	return AddDays(StartOfWeek(t), 6)
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth is day 0 of the following month.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

func daysInMonth(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsKeepDay shifts t by whole months and clamps the day to the length
// of the target month, so Jan 31 + 1 lands on the last day of February.
func AddMonthsKeepDay(t time.Time, delta int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if max := daysInMonth(first.Year(), first.Month()); day > max {
		day = max
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// WeekDays lists the seven days starting at weekStart.
func WeekDays(weekStart time.Time) [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = AddDays(weekStart, i)
	}
	return days
}

// MonthWeekStarts returns the Monday of every week that touches t's month.
func MonthWeekStarts(t time.Time) []time.Time {
	first := StartOfWeek(StartOfMonth(t))
	last := StartOfWeek(EndOfMonth(t))
	var out []time.Time
	for d := first; !d.After(last); d = AddDays(d, 7) {
		out = append(out, d)
	}
	return out
}

// MonthGrid is the 6x7 calendar grid for t's month, starting on a Monday.
func MonthGrid(t time.Time) [42]time.Time {
	start := StartOfWeek(StartOfMonth(t))
	var grid [42]time.Time
	for i := range grid {
		grid[i] = AddDays(start, i)
	}
	return grid
}
