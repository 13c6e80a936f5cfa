package planner

import "context"

// Journal receives every store mutation before it is applied in memory. A
// journal error aborts the mutation and is returned to the caller unchanged.
type Journal interface {
	// Tx runs fn against a journal whose writes commit or roll back together.
	Tx(ctx context.Context, fn func(j Journal) error) error

	TaskAdded(ctx context.Context, date DateKey, t Task) error
	TaskDoneSet(ctx context.Context, taskID string, done bool) error
	TaskDeleted(ctx context.Context, taskID string) error
	TaskAssigned(ctx context.Context, a AssignedTask) error

	StudySet(ctx context.Context, menteeID string, date DateKey, subject string, minutes int) error
	StudyCleared(ctx context.Context, menteeID string, date DateKey, subject string) error
	SubjectsSaved(ctx context.Context, subjects []string) error
	CommentSet(ctx context.Context, menteeID string, date DateKey, text string) error

	FeedbackSaved(ctx context.Context, menteeID string, f Feedback) error
	FeedbackDeleted(ctx context.Context, feedbackID string) error
	FeedbackSeen(ctx context.Context, menteeID string, ids []string) error

	DetailSaved(ctx context.Context, d TaskDetail) error
	DetailDeleted(ctx context.Context, key DetailKey) error

	ReminderSaved(ctx context.Context, menteeID string, r Reminder) error
	ReminderDeleted(ctx context.Context, reminderID string) error
}

// NopJournal keeps the store purely in memory.
type NopJournal struct{}

func (n NopJournal) Tx(ctx context.Context, fn func(j Journal) error) error { return fn(n) }

func (NopJournal) TaskAdded(context.Context, DateKey, Task) error           { return nil }
func (NopJournal) TaskDoneSet(context.Context, string, bool) error          { return nil }
func (NopJournal) TaskDeleted(context.Context, string) error                { return nil }
func (NopJournal) TaskAssigned(context.Context, AssignedTask) error         { return nil }
func (NopJournal) StudySet(context.Context, string, DateKey, string, int) error {
	return nil
}
func (NopJournal) StudyCleared(context.Context, string, DateKey, string) error { return nil }
func (NopJournal) SubjectsSaved(context.Context, []string) error               { return nil }
func (NopJournal) CommentSet(context.Context, string, DateKey, string) error   { return nil }
func (NopJournal) FeedbackSaved(context.Context, string, Feedback) error       { return nil }
func (NopJournal) FeedbackDeleted(context.Context, string) error               { return nil }
func (NopJournal) FeedbackSeen(context.Context, string, []string) error        { return nil }
func (NopJournal) DetailSaved(context.Context, TaskDetail) error               { return nil }
func (NopJournal) DetailDeleted(context.Context, DetailKey) error              { return nil }
func (NopJournal) ReminderSaved(context.Context, string, Reminder) error       { return nil }
func (NopJournal) ReminderDeleted(context.Context, string) error               { return nil }
