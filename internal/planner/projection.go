package planner

import (
	"slices"
	"time"
)

// RemainingCount counts the undone tasks on date visible to menteeID.
func RemainingCount(r Reader, date DateKey, menteeID string) int {
	n := 0
	for _, t := range r.TasksOn(date) {
		if t.VisibleTo(menteeID) && !t.Done {
			n++
		}
	}
	return n
}

// WeeklyTaskItems flattens the seven buckets starting at weekStart.
func WeeklyTaskItems(r Reader, menteeID string, weekStart time.Time) []DatedTask {
	var items []DatedTask
	for _, day := range WeekDays(weekStart) {
		key := KeyOf(day)
		for _, t := range r.TasksOn(key) {
			if t.VisibleTo(menteeID) {
				items = append(items, DatedTask{Task: t, Date: key})
			}
		}
	}
	return items
}

// WeeklyFeedbackItems keeps feedback dated within [weekStart, weekStart+6].
func WeeklyFeedbackItems(r Reader, menteeID string, weekStart time.Time) []Feedback {
	start := KeyOf(weekStart)
	end := KeyOf(AddDays(weekStart, 6))
	var out []Feedback
	for _, f := range r.Feedback(menteeID) {
		if f.Date.Between(start, end) {
			out = append(out, f)
		}
	}
	return out
}

type ReminderSummary struct {
	TodayUndone   []Task `json:"todayUndone"`
	TomorrowCount int    `json:"tomorrowCount"`
}

// SummarizeReminders reads today's and tomorrow's buckets as they are, without
// a mentee filter.
func SummarizeReminders(r Reader, today time.Time) ReminderSummary {
	sum := ReminderSummary{TodayUndone: []Task{}}
	for _, t := range r.TasksOn(KeyOf(today)) {
		if !t.Done {
			sum.TodayUndone = append(sum.TodayUndone, t)
		}
	}
	sum.TomorrowCount = len(r.TasksOn(KeyOf(AddDays(today, 1))))
	return sum
}

// SummarizeRemindersFor is SummarizeReminders limited to tasks menteeID can see.
func SummarizeRemindersFor(r Reader, menteeID string, today time.Time) ReminderSummary {
	sum := ReminderSummary{TodayUndone: []Task{}}
	for _, t := range r.TasksOn(KeyOf(today)) {
		if t.VisibleTo(menteeID) && !t.Done {
			sum.TodayUndone = append(sum.TodayUndone, t)
		}
	}
	for _, t := range r.TasksOn(KeyOf(AddDays(today, 1))) {
		if t.VisibleTo(menteeID) {
			sum.TomorrowCount++
		}
	}
	return sum
}

func UnseenFeedback(r Reader, menteeID string) []Feedback {
	seen := r.SeenFeedback(menteeID)
	out := []Feedback{}
	for _, f := range r.Feedback(menteeID) {
		if !slices.Contains(seen, f.ID) {
			out = append(out, f)
		}
	}
	return out
}

// DayView is everything the daily planner page shows for one mentee.
type DayView struct {
	Date         DateKey        `json:"date"`
	Tasks        []Task         `json:"tasks"`
	Study        map[string]int `json:"study"`
	Comment      string         `json:"comment"`
	TotalMinutes int            `json:"totalMinutes"`
	DoneCount    int            `json:"doneCount"`
	Remaining    int            `json:"remaining"`
}

// Daily builds the day view. Every catalog subject appears in Study, at zero
// when nothing was logged; minutes logged under a since-renamed subject are
// kept as well.
func Daily(r Reader, menteeID string, date DateKey) DayView {
	v := DayView{
		Date:    date,
		Tasks:   []Task{},
		Study:   make(map[string]int),
		Comment: r.Comment(menteeID, date),
	}
	for _, s := range r.Subjects() {
		v.Study[s] = 0
	}
	for s, min := range r.Study(menteeID, date) {
		v.Study[s] = min
		v.TotalMinutes += min
	}
	for _, t := range r.TasksOn(date) {
		if !t.VisibleTo(menteeID) {
			continue
		}
		v.Tasks = append(v.Tasks, t)
		if t.Done {
			v.DoneCount++
		} else {
			v.Remaining++
		}
	}
	return v
}

// DaySummary is one cell of the weekly strip or the month grid.
type DaySummary struct {
	Date         DateKey `json:"date"`
	Total        int     `json:"total"`
	Done         int     `json:"done"`
	Remaining    int     `json:"remaining"`
	StudyMinutes int     `json:"studyMinutes"`
}

func summarizeDay(r Reader, menteeID string, date DateKey) DaySummary {
	s := DaySummary{Date: date}
	for _, t := range r.TasksOn(date) {
		if !t.VisibleTo(menteeID) {
			continue
		}
		s.Total++
		if t.Done {
			s.Done++
		}
	}
	s.Remaining = s.Total - s.Done
	for _, min := range r.Study(menteeID, date) {
		s.StudyMinutes += min
	}
	return s
}

// WeekSummary summarises the seven days starting at weekStart.
func WeekSummary(r Reader, menteeID string, weekStart time.Time) []DaySummary {
	days := WeekDays(weekStart)
	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		out = append(out, summarizeDay(r, menteeID, KeyOf(d)))
	}
	return out
}

// MonthRemaining covers the 42-day grid around t's month.
func MonthRemaining(r Reader, menteeID string, t time.Time) []DaySummary {
	grid := MonthGrid(t)
	out := make([]DaySummary, 0, len(grid))
	for _, d := range grid {
		out = append(out, summarizeDay(r, menteeID, KeyOf(d)))
	}
	return out
}

// TaskHistory lists every task owned by menteeID, newest date first. Shared
// tasks are left out; this is the mentor's per-mentee list.
func TaskHistory(r Reader, menteeID string) []DatedTask {
	var out []DatedTask
	for _, date := range r.Dates() {
		for _, t := range r.TasksOn(date) {
			if t.MenteeID == menteeID {
				out = append(out, DatedTask{Task: t, Date: date})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b DatedTask) int {
		switch {
		case a.Date > b.Date:
			return -1
		case a.Date < b.Date:
			return 1
		}
		return 0
	})
	return out
}

// TaskRange is TaskHistory limited to [start, end], oldest first, used by the
// mentor overview.
func TaskRange(r Reader, menteeID string, start, end DateKey) []DatedTask {
	var out []DatedTask
	for _, date := range r.Dates() {
		if !date.Between(start, end) {
			continue
		}
		for _, t := range r.TasksOn(date) {
			if t.VisibleTo(menteeID) {
				out = append(out, DatedTask{Task: t, Date: date})
			}
		}
	}
	return out
}
