package planner

import "sort"

// Reader is the read side consumed by projections. Implementations return
// copies the caller may keep.
type Reader interface {
	Dates() []DateKey
	TasksOn(date DateKey) []Task
	Study(menteeID string, date DateKey) map[string]int
	Comment(menteeID string, date DateKey) string
	Subjects() []string
	Feedback(menteeID string) []Feedback
	SeenFeedback(menteeID string) []string
	AssignedTasks() []AssignedTask
	Reminders(menteeID string) []Reminder
}

// Snapshot is a plain copy of store state. It is what Hydrate loads and what
// persistence hands back at startup.
type Snapshot struct {
	TasksByDate       map[DateKey][]Task
	StudyByDate       map[string]map[DateKey]map[string]int
	CommentByDate     map[string]map[DateKey]string
	SubjectList       []string
	FeedbackByMentee  map[string][]Feedback
	SeenByMentee      map[string][]string
	Assignments       []AssignedTask
	Details           map[DetailKey]TaskDetail
	RemindersByMentee map[string][]Reminder
}

func (s *Snapshot) Dates() []DateKey {
	keys := make([]DateKey, 0, len(s.TasksByDate))
	for k := range s.TasksByDate {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s *Snapshot) TasksOn(date DateKey) []Task {
	return append([]Task(nil), s.TasksByDate[date]...)
}

func (s *Snapshot) Study(menteeID string, date DateKey) map[string]int {
	out := make(map[string]int)
	for k, v := range s.StudyByDate[menteeID][date] {
		out[k] = v
	}
	return out
}

func (s *Snapshot) Comment(menteeID string, date DateKey) string {
	return s.CommentByDate[menteeID][date]
}

func (s *Snapshot) Subjects() []string {
	return append([]string(nil), s.SubjectList...)
}

func (s *Snapshot) Feedback(menteeID string) []Feedback {
	return append([]Feedback(nil), s.FeedbackByMentee[menteeID]...)
}

func (s *Snapshot) SeenFeedback(menteeID string) []string {
	return append([]string(nil), s.SeenByMentee[menteeID]...)
}

func (s *Snapshot) AssignedTasks() []AssignedTask {
	return append([]AssignedTask(nil), s.Assignments...)
}

func (s *Snapshot) Reminders(menteeID string) []Reminder {
	return append([]Reminder(nil), s.RemindersByMentee[menteeID]...)
}
