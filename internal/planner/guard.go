package planner

import (
	"context"
	"fmt"
	"time"
)

type Role string

const (
	RoleMentee Role = "mentee"
	RoleMentor Role = "mentor"
)

func (r Role) Valid() bool {
	return r == RoleMentee || r == RoleMentor
}

// Actor is the authenticated caller of a guarded operation.
type Actor struct {
	UserID string
	Role   Role
}

// Roster answers whether a mentor supervises a mentee.
type Roster interface {
	Manages(ctx context.Context, mentorID, menteeID string) (bool, error)
}

// Guard is the only write path exposed to transports. Every method checks the
// actor's role and ownership before touching the store.
type Guard struct {
	store  *Store
	roster Roster
}

func NewGuard(store *Store, roster Roster) *Guard {
	return &Guard{store: store, roster: roster}
}

func (g *Guard) Store() *Store { return g.store }

func (g *Guard) requireMentee(a Actor, menteeID string) error {
	if a.Role != RoleMentee || a.UserID == "" || a.UserID != menteeID {
		return fmt.Errorf("%w: %s %s cannot act for mentee %s", ErrForbidden, a.Role, a.UserID, menteeID)
	}
	return nil
}

func (g *Guard) requireMentor(ctx context.Context, a Actor, menteeID string) error {
	if a.Role != RoleMentor || a.UserID == "" || menteeID == "" {
		return fmt.Errorf("%w: mentor role required", ErrForbidden)
	}
	ok, err := g.roster.Manages(ctx, a.UserID, menteeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: mentor %s does not manage mentee %s", ErrForbidden, a.UserID, menteeID)
	}
	return nil
}

// CanRead lets a mentee read their own data and a mentor read their mentees'.
func (g *Guard) CanRead(ctx context.Context, a Actor, menteeID string) error {
	if a.Role == RoleMentor {
		return g.requireMentor(ctx, a, menteeID)
	}
	return g.requireMentee(a, menteeID)
}

func (g *Guard) taskOn(date DateKey, taskID string) (Task, error) {
	for _, t := range g.store.TasksOn(date) {
		if t.ID == taskID {
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("%w: task %s on %s", ErrNotFound, taskID, date)
}

// requireTaskAccess checks a mentee against a task they can see, or a mentor
// against the mentee who owns it.
func (g *Guard) requireTaskAccess(ctx context.Context, a Actor, t Task) error {
	switch a.Role {
	case RoleMentee:
		if !t.VisibleTo(a.UserID) {
			return fmt.Errorf("%w: task %s belongs to another mentee", ErrForbidden, t.ID)
		}
		return nil
	case RoleMentor:
		return g.requireMentor(ctx, a, t.MenteeID)
	}
	return fmt.Errorf("%w: unknown role %q", ErrForbidden, a.Role)
}

// Mentee tasks.

func (g *Guard) AddTask(ctx context.Context, a Actor, date DateKey, text, subject string) (Task, error) {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return Task{}, err
	}
	return g.store.AddTask(ctx, date, text, subject, AssignedBySelf, a.UserID)
}

// ToggleTask is open to the mentee who sees the task and to their mentor.
func (g *Guard) ToggleTask(ctx context.Context, a Actor, date DateKey, taskID string) (Task, error) {
	t, err := g.taskOn(date, taskID)
	if err != nil {
		return Task{}, err
	}
	if err := g.requireTaskAccess(ctx, a, t); err != nil {
		return Task{}, err
	}
	return g.store.ToggleTask(ctx, date, taskID)
}

// DeleteTask enforces the mentee path rejecting mentor assignments, and the
// mentor path reporting them as immutable.
func (g *Guard) DeleteTask(ctx context.Context, a Actor, date DateKey, taskID string) error {
	t, err := g.taskOn(date, taskID)
	if err != nil {
		return err
	}
	if err := g.requireTaskAccess(ctx, a, t); err != nil {
		return err
	}
	if a.Role == RoleMentee && !t.Deletable() {
		return fmt.Errorf("%w: mentor-assigned task %s", ErrForbidden, taskID)
	}
	removed, err := g.store.DeleteTask(ctx, date, taskID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrImmutable, taskID)
	}
	return nil
}

// Study, subjects and comments.

func (g *Guard) SetStudyMinutes(ctx context.Context, a Actor, date DateKey, subject string, minutes int) (int, error) {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return 0, err
	}
	return g.store.SetStudyMinutes(ctx, a.UserID, date, subject, minutes)
}

func (g *Guard) SetStudyHM(ctx context.Context, a Actor, date DateKey, subject string, hours, minutes int) (int, error) {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return 0, err
	}
	return g.store.SetStudyHM(ctx, a.UserID, date, subject, hours, minutes)
}

func (g *Guard) AddSubject(ctx context.Context, a Actor) (string, error) {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return "", err
	}
	return g.store.AddSubject(ctx)
}

func (g *Guard) RenameSubject(ctx context.Context, a Actor, current DateKey, oldName, newName string) (bool, error) {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return false, err
	}
	return g.store.RenameSubject(ctx, a.UserID, current, oldName, newName)
}

func (g *Guard) DeleteSubject(ctx context.Context, a Actor, current DateKey, name string) error {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return err
	}
	return g.store.DeleteSubject(ctx, a.UserID, current, name)
}

func (g *Guard) SetComment(ctx context.Context, a Actor, date DateKey, text string) error {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return err
	}
	return g.store.SetComment(ctx, a.UserID, date, text)
}

func (g *Guard) MarkFeedbackSeen(ctx context.Context, a Actor) ([]string, error) {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return nil, err
	}
	return g.store.MarkFeedbackSeen(ctx, a.UserID)
}

func (g *Guard) AddReminder(ctx context.Context, a Actor, title string, date DateKey, at time.Time) (Reminder, error) {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return Reminder{}, err
	}
	return g.store.AddReminder(ctx, a.UserID, title, date, at)
}

func (g *Guard) DeleteReminder(ctx context.Context, a Actor, id string) error {
	if err := g.requireMentee(a, a.UserID); err != nil {
		return err
	}
	return g.store.DeleteReminder(ctx, a.UserID, id)
}

// Mentor operations.

func (g *Guard) AssignTask(ctx context.Context, a Actor, menteeID string, date DateKey, text, subject, mentorNote string) (AssignedTask, error) {
	if err := g.requireMentor(ctx, a, menteeID); err != nil {
		return AssignedTask{}, err
	}
	return g.store.AssignTask(ctx, a.UserID, menteeID, date, text, subject, mentorNote)
}

func (g *Guard) AddFeedback(ctx context.Context, a Actor, menteeID string, date DateKey, title, body string) (Feedback, error) {
	if err := g.requireMentor(ctx, a, menteeID); err != nil {
		return Feedback{}, err
	}
	return g.store.AddFeedback(ctx, menteeID, date, title, body)
}

func (g *Guard) EditFeedback(ctx context.Context, a Actor, id, title, body string) (Feedback, error) {
	menteeID, _, ok := g.store.FindFeedback(id)
	if !ok {
		return Feedback{}, fmt.Errorf("%w: feedback %s", ErrNotFound, id)
	}
	if err := g.requireMentor(ctx, a, menteeID); err != nil {
		return Feedback{}, err
	}
	return g.store.EditFeedback(ctx, menteeID, id, title, body)
}

func (g *Guard) DeleteFeedback(ctx context.Context, a Actor, id string) error {
	menteeID, _, ok := g.store.FindFeedback(id)
	if !ok {
		return fmt.Errorf("%w: feedback %s", ErrNotFound, id)
	}
	if err := g.requireMentor(ctx, a, menteeID); err != nil {
		return err
	}
	return g.store.DeleteFeedback(ctx, menteeID, id)
}

// Task details. The mentee half belongs to the mentee, the mentor half to a
// managing mentor; both may read the whole detail.

func (g *Guard) requireSide(ctx context.Context, a Actor, key DetailKey, side FileSide) error {
	if !side.Valid() {
		return fmt.Errorf("%w: side %q", ErrValidation, side)
	}
	t, err := g.taskOn(key.Date, key.TaskID)
	if err != nil {
		return err
	}
	if string(a.Role) != string(side) {
		return fmt.Errorf("%w: %s cannot edit the %s side", ErrForbidden, a.Role, side)
	}
	return g.requireTaskAccess(ctx, a, t)
}

func (g *Guard) Detail(ctx context.Context, a Actor, key DetailKey) (TaskDetail, error) {
	t, err := g.taskOn(key.Date, key.TaskID)
	if err != nil {
		return TaskDetail{}, err
	}
	if err := g.requireTaskAccess(ctx, a, t); err != nil {
		return TaskDetail{}, err
	}
	return g.store.Detail(key), nil
}

func (g *Guard) SetNote(ctx context.Context, a Actor, key DetailKey, side FileSide, note string) (TaskDetail, error) {
	if err := g.requireSide(ctx, a, key, side); err != nil {
		return TaskDetail{}, err
	}
	return g.store.SetNote(ctx, key, side, note)
}

func (g *Guard) AttachFiles(ctx context.Context, a Actor, key DetailKey, side FileSide, files []FileRef) (TaskDetail, error) {
	if err := g.requireSide(ctx, a, key, side); err != nil {
		return TaskDetail{}, err
	}
	return g.store.AttachFiles(ctx, key, side, files)
}

// CanAttach runs the side check alone so uploads can be refused before any
// blob is written.
func (g *Guard) CanAttach(ctx context.Context, a Actor, key DetailKey, side FileSide) error {
	return g.requireSide(ctx, a, key, side)
}

func (g *Guard) RemoveFile(ctx context.Context, a Actor, key DetailKey, side FileSide, fileID string) (FileRef, error) {
	if err := g.requireSide(ctx, a, key, side); err != nil {
		return FileRef{}, err
	}
	return g.store.RemoveFile(ctx, key, side, fileID)
}
