package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"study_planner_backend/internal/model"
	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/repository"
	"study_planner_backend/internal/util"
	"study_planner_backend/pkg/logger"
	"study_planner_backend/pkg/monitoring"
	"study_planner_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ViewStore keeps per-user navigation state between requests.
type ViewStore interface {
	Get(ctx context.Context, userID string) (planner.ViewState, bool, error)
	Save(ctx context.Context, userID string, state planner.ViewState) error
}

var _ ViewStore = (*repository.ViewRepository)(nil)

// Todo is the wire shape of a task, matching what the planner pages read.
type Todo struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Date       planner.DateKey    `json:"date"`
	Subject    string             `json:"subject"`
	Deletable  bool               `json:"deletable"`
	IsDone     bool               `json:"isDone"`
	AssignedBy planner.AssignedBy `json:"assignedBy"`
}

func todoOf(date planner.DateKey, t planner.Task) Todo {
	return Todo{
		ID:         t.ID,
		Title:      t.Text,
		Date:       date,
		Subject:    t.Subject,
		Deletable:  t.Deletable(),
		IsDone:     t.Done,
		AssignedBy: t.AssignedBy,
	}
}

func todosOf(date planner.DateKey, tasks []planner.Task) []Todo {
	out := make([]Todo, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, todoOf(date, t))
	}
	return out
}

type UserBrief struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Role     model.UserRole `json:"role,omitempty"`
}

type Dashboard struct {
	Me             UserBrief               `json:"me"`
	Mentor         *UserBrief              `json:"mentor"`
	Date           planner.DateKey         `json:"date"`
	Todos          []Todo                  `json:"todos"`
	StudyTime      map[string]int          `json:"studyTime"`
	Comment        string                  `json:"comment"`
	WeekSummary    []planner.DaySummary    `json:"weekSummary"`
	Remaining      int                     `json:"remaining"`
	UnseenFeedback []planner.Feedback      `json:"unseenFeedback"`
	Reminders      planner.ReminderSummary `json:"reminders"`
}

type WeekPage struct {
	Start    planner.DateKey      `json:"start"`
	End      planner.DateKey      `json:"end"`
	Tasks    []planner.DatedTask  `json:"tasks"`
	Feedback []planner.Feedback   `json:"feedback"`
	Summary  []planner.DaySummary `json:"summary"`
}

type CalendarPage struct {
	Month     string               `json:"month"`
	WeekStart []planner.DateKey    `json:"weekStarts"`
	Days      []planner.DaySummary `json:"days"`
}

type RemindersPage struct {
	Items   []planner.Reminder      `json:"items"`
	Summary planner.ReminderSummary `json:"summary"`
}

type MenteeSummary struct {
	ID             string `json:"id"`
	LoginID        string `json:"loginId"`
	Username       string `json:"username"`
	Remaining      int    `json:"remaining"`
	UnseenFeedback int    `json:"unseenFeedback"`
}

type MenteeOverview struct {
	MenteeID string               `json:"menteeId"`
	Tasks    []planner.DatedTask  `json:"tasks"`
	Feedback []planner.Feedback   `json:"feedback"`
	Summary  []planner.DaySummary `json:"summary"`
}

// ViewPage is the saved navigation state plus the day it points at, when the
// caller may read that mentee.
type ViewPage struct {
	State planner.ViewState `json:"state"`
	Day   *planner.DayView  `json:"day,omitempty"`
}

type PlannerService struct {
	Guard    *planner.Guard
	UserRepo UserStore
	Views    ViewStore
	Now      func() time.Time
	// Blobs 삭제된 할 일의 첨부 파일을 지울 저장소. nil 이면 파일은 남는다
	Blobs BlobStore
}

func NewPlannerService(guard *planner.Guard, userRepo UserStore, views ViewStore) *PlannerService {
	return &PlannerService{
		Guard:    guard,
		UserRepo: userRepo,
		Views:    views,
		Now:      time.Now,
	}
}

func (s *PlannerService) store() *planner.Store {
	return s.Guard.Store()
}

func (s *PlannerService) today() time.Time {
	return s.Now()
}

// track opens a span for a planner write and returns the callback that
// records its outcome.
func (s *PlannerService) track(ctx context.Context, op string, a planner.Actor) (context.Context, func(error)) {
	ctx, span := tracing.Tracer.Start(ctx, "planner."+op)
	span.SetAttributes(
		attribute.String("planner.actor", a.UserID),
		attribute.String("planner.role", string(a.Role)),
	)
	return ctx, func(err error) {
		defer span.End()
		result := "ok"
		switch {
		case err == nil:
			logger.Log.Debug("Planner mutation", zap.String("op", op), zap.String("actor", a.UserID))
		case isDomainError(err):
			result = "rejected"
			logger.Log.Debug("Planner mutation rejected", zap.String("op", op), zap.String("actor", a.UserID), zap.Error(err))
		default:
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Log.Error("Planner mutation failed", zap.String("op", op), zap.String("actor", a.UserID), zap.Error(err))
		}
		monitoring.PlannerMutations.WithLabelValues(op, result).Inc()
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, planner.ErrValidation) ||
		errors.Is(err, planner.ErrNotFound) ||
		errors.Is(err, planner.ErrForbidden) ||
		errors.Is(err, planner.ErrImmutable)
}

func parseKey(raw string, fallback time.Time) (planner.DateKey, error) {
	if raw == "" {
		return planner.KeyOf(fallback), nil
	}
	return planner.ParseDateKey(raw)
}

// Dashboard 멘티 메인 화면
func (s *PlannerService) Dashboard(ctx context.Context, a planner.Actor, rawDate string) (*Dashboard, error) {
	if a.Role != planner.RoleMentee {
		return nil, fmt.Errorf("%w: dashboard is for mentees", planner.ErrForbidden)
	}
	date, err := parseKey(rawDate, s.today())
	if err != nil {
		return nil, err
	}

	me, err := s.UserRepo.FindByID(util.MustParseUint(a.UserID))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	st := s.store()
	day := planner.Daily(st, a.UserID, date)
	d := &Dashboard{
		Me:             UserBrief{ID: util.FormatID(me.ID), Username: me.Username, Role: me.Role},
		Date:           date,
		Todos:          todosOf(date, day.Tasks),
		StudyTime:      day.Study,
		Comment:        day.Comment,
		WeekSummary:    planner.WeekSummary(st, a.UserID, planner.StartOfWeek(date.Time())),
		Remaining:      day.Remaining,
		UnseenFeedback: planner.UnseenFeedback(st, a.UserID),
		Reminders:      planner.SummarizeRemindersFor(st, a.UserID, s.today()),
	}
	if me.Mentor != nil {
		d.Mentor = &UserBrief{ID: util.FormatID(me.Mentor.ID), Username: me.Mentor.Username}
	}
	return d, nil
}

func (s *PlannerService) Day(ctx context.Context, a planner.Actor, menteeID, rawDate string) (planner.DayView, error) {
	date, err := parseKey(rawDate, s.today())
	if err != nil {
		return planner.DayView{}, err
	}
	if err := s.Guard.CanRead(ctx, a, menteeID); err != nil {
		return planner.DayView{}, err
	}
	return planner.Daily(s.store(), menteeID, date), nil
}

func (s *PlannerService) Week(ctx context.Context, a planner.Actor, menteeID, rawStart string) (*WeekPage, error) {
	start, err := parseKey(rawStart, s.today())
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanRead(ctx, a, menteeID); err != nil {
		return nil, err
	}
	weekStart := planner.StartOfWeek(start.Time())
	st := s.store()
	return &WeekPage{
		Start:    planner.KeyOf(weekStart),
		End:      planner.KeyOf(planner.EndOfWeek(weekStart)),
		Tasks:    planner.WeeklyTaskItems(st, menteeID, weekStart),
		Feedback: planner.WeeklyFeedbackItems(st, menteeID, weekStart),
		Summary:  planner.WeekSummary(st, menteeID, weekStart),
	}, nil
}

func (s *PlannerService) Calendar(ctx context.Context, a planner.Actor, menteeID, rawDate string) (*CalendarPage, error) {
	date, err := parseKey(rawDate, s.today())
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanRead(ctx, a, menteeID); err != nil {
		return nil, err
	}
	t := date.Time()
	page := &CalendarPage{
		Month: t.Format("2006-01"),
		Days:  planner.MonthRemaining(s.store(), menteeID, t),
	}
	for _, w := range planner.MonthWeekStarts(t) {
		page.WeekStart = append(page.WeekStart, planner.KeyOf(w))
	}
	return page, nil
}

func (s *PlannerService) Subjects() []string {
	return s.store().Subjects()
}

func (s *PlannerService) Reminders(ctx context.Context, a planner.Actor) (*RemindersPage, error) {
	if err := s.Guard.CanRead(ctx, a, a.UserID); err != nil {
		return nil, err
	}
	st := s.store()
	items := st.Reminders(a.UserID)
	if items == nil {
		items = []planner.Reminder{}
	}
	return &RemindersPage{
		Items:   items,
		Summary: planner.SummarizeRemindersFor(st, a.UserID, s.today()),
	}, nil
}

// Mentee writes.

func (s *PlannerService) AddTask(ctx context.Context, a planner.Actor, rawDate, title, subject string) (Todo, error) {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return Todo{}, err
	}
	if subject == "" {
		subject = planner.DefaultSubject
	}
	ctx, done := s.track(ctx, "add_task", a)
	t, err := s.Guard.AddTask(ctx, a, date, title, subject)
	done(err)
	if err != nil {
		return Todo{}, err
	}
	return todoOf(date, t), nil
}

func (s *PlannerService) ToggleTask(ctx context.Context, a planner.Actor, rawDate, taskID string) (Todo, error) {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return Todo{}, err
	}
	ctx, done := s.track(ctx, "toggle_task", a)
	t, err := s.Guard.ToggleTask(ctx, a, date, taskID)
	done(err)
	if err != nil {
		return Todo{}, err
	}
	return todoOf(date, t), nil
}

func (s *PlannerService) DeleteTask(ctx context.Context, a planner.Actor, rawDate, taskID string) error {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return err
	}
	return s.deleteTask(ctx, a, date, taskID)
}

// deleteTask removes the task through the guard and then the blobs its
// detail pointed at. A failed blob delete is only logged.
func (s *PlannerService) deleteTask(ctx context.Context, a planner.Actor, date planner.DateKey, taskID string) error {
	detail := s.store().Detail(planner.DetailKey{Date: date, TaskID: taskID})

	ctx, done := s.track(ctx, "delete_task", a)
	err := s.Guard.DeleteTask(ctx, a, date, taskID)
	done(err)
	if err != nil || s.Blobs == nil {
		return err
	}
	for _, f := range append(detail.MenteeFiles, detail.MentorFiles...) {
		if f.Key == "" {
			continue
		}
		if err := s.Blobs.Delete(ctx, f.Key); err != nil {
			logger.Log.Warn("Failed to delete blob of removed task", zap.String("task", taskID), zap.String("key", f.Key), zap.Error(err))
		}
	}
	return nil
}

// SetStudy stores minutes directly, or hours and minutes when hours is given.
func (s *PlannerService) SetStudy(ctx context.Context, a planner.Actor, rawDate, subject string, minutes int, hours *int) (int, error) {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return 0, err
	}
	ctx, done := s.track(ctx, "set_study", a)
	var total int
	if hours != nil {
		total, err = s.Guard.SetStudyHM(ctx, a, date, subject, *hours, minutes)
	} else {
		total, err = s.Guard.SetStudyMinutes(ctx, a, date, subject, minutes)
	}
	done(err)
	return total, err
}

func (s *PlannerService) SetComment(ctx context.Context, a planner.Actor, rawDate, text string) error {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return err
	}
	ctx, done := s.track(ctx, "set_comment", a)
	err = s.Guard.SetComment(ctx, a, date, text)
	done(err)
	return err
}

func (s *PlannerService) AddSubject(ctx context.Context, a planner.Actor) (string, error) {
	ctx, done := s.track(ctx, "add_subject", a)
	name, err := s.Guard.AddSubject(ctx, a)
	done(err)
	return name, err
}

func (s *PlannerService) RenameSubject(ctx context.Context, a planner.Actor, rawDate, oldName, newName string) (bool, error) {
	date, err := parseKey(rawDate, s.today())
	if err != nil {
		return false, err
	}
	ctx, done := s.track(ctx, "rename_subject", a)
	changed, err := s.Guard.RenameSubject(ctx, a, date, oldName, newName)
	done(err)
	return changed, err
}

func (s *PlannerService) DeleteSubject(ctx context.Context, a planner.Actor, rawDate, name string) error {
	date, err := parseKey(rawDate, s.today())
	if err != nil {
		return err
	}
	ctx, done := s.track(ctx, "delete_subject", a)
	err = s.Guard.DeleteSubject(ctx, a, date, name)
	done(err)
	return err
}

func (s *PlannerService) MarkFeedbackSeen(ctx context.Context, a planner.Actor) ([]string, error) {
	ctx, done := s.track(ctx, "mark_feedback_seen", a)
	ids, err := s.Guard.MarkFeedbackSeen(ctx, a)
	done(err)
	return ids, err
}

func (s *PlannerService) AddReminder(ctx context.Context, a planner.Actor, title, rawDate string, at time.Time) (planner.Reminder, error) {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return planner.Reminder{}, err
	}
	ctx, done := s.track(ctx, "add_reminder", a)
	r, err := s.Guard.AddReminder(ctx, a, title, date, at)
	done(err)
	return r, err
}

func (s *PlannerService) DeleteReminder(ctx context.Context, a planner.Actor, id string) error {
	ctx, done := s.track(ctx, "delete_reminder", a)
	err := s.Guard.DeleteReminder(ctx, a, id)
	done(err)
	return err
}

// Mentor side.

func (s *PlannerService) Mentees(ctx context.Context, a planner.Actor) ([]MenteeSummary, error) {
	if a.Role != planner.RoleMentor {
		return nil, fmt.Errorf("%w: mentor role required", planner.ErrForbidden)
	}
	users, err := s.UserRepo.FindMentees(util.MustParseUint(a.UserID))
	if err != nil {
		return nil, err
	}
	st := s.store()
	today := planner.KeyOf(s.today())
	out := make([]MenteeSummary, 0, len(users))
	for _, u := range users {
		id := util.FormatID(u.ID)
		out = append(out, MenteeSummary{
			ID:             id,
			LoginID:        u.LoginID,
			Username:       u.Username,
			Remaining:      planner.RemainingCount(st, today, id),
			UnseenFeedback: len(planner.UnseenFeedback(st, id)),
		})
	}
	return out, nil
}

// MenteeOverview lists the mentee's tasks between start and end, or the whole
// history newest first when no range is given.
func (s *PlannerService) MenteeOverview(ctx context.Context, a planner.Actor, menteeID, rawStart, rawEnd string) (*MenteeOverview, error) {
	if err := s.Guard.CanRead(ctx, a, menteeID); err != nil {
		return nil, err
	}
	st := s.store()
	ov := &MenteeOverview{
		MenteeID: menteeID,
		Feedback: st.Feedback(menteeID),
	}
	if ov.Feedback == nil {
		ov.Feedback = []planner.Feedback{}
	}

	if rawStart == "" && rawEnd == "" {
		ov.Tasks = planner.TaskHistory(st, menteeID)
		ov.Summary = planner.WeekSummary(st, menteeID, planner.StartOfWeek(s.today()))
		return ov, nil
	}

	start, err := parseKey(rawStart, s.today())
	if err != nil {
		return nil, err
	}
	end, err := parseKey(rawEnd, planner.EndOfWeek(start.Time()))
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, fmt.Errorf("%w: end %s is before start %s", planner.ErrValidation, end, start)
	}
	ov.Tasks = planner.TaskRange(st, menteeID, start, end)
	ov.Summary = planner.WeekSummary(st, menteeID, planner.StartOfWeek(start.Time()))
	return ov, nil
}

func (s *PlannerService) AssignTask(ctx context.Context, a planner.Actor, menteeID, rawDate, title, subject, mentorNote string) (planner.AssignedTask, error) {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return planner.AssignedTask{}, err
	}
	if subject == "" {
		subject = planner.DefaultSubject
	}
	ctx, done := s.track(ctx, "assign_task", a)
	at, err := s.Guard.AssignTask(ctx, a, menteeID, date, title, subject, mentorNote)
	done(err)
	return at, err
}

// DeleteMenteeTask is the mentor's delete path; mentor assignments stay
// immutable.
func (s *PlannerService) DeleteMenteeTask(ctx context.Context, a planner.Actor, menteeID, rawDate, taskID string) error {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return err
	}
	if err := s.Guard.CanRead(ctx, a, menteeID); err != nil {
		return err
	}
	dt, ok := s.store().FindTask(taskID)
	if !ok || dt.Date != date {
		return fmt.Errorf("%w: task %s on %s", planner.ErrNotFound, taskID, date)
	}
	if dt.MenteeID != menteeID {
		return fmt.Errorf("%w: task %s belongs to another mentee", planner.ErrForbidden, taskID)
	}
	return s.deleteTask(ctx, a, date, taskID)
}

func (s *PlannerService) AddFeedback(ctx context.Context, a planner.Actor, menteeID, rawDate, title, body string) (planner.Feedback, error) {
	date, err := planner.ParseDateKey(rawDate)
	if err != nil {
		return planner.Feedback{}, err
	}
	ctx, done := s.track(ctx, "add_feedback", a)
	f, err := s.Guard.AddFeedback(ctx, a, menteeID, date, title, body)
	done(err)
	return f, err
}

func (s *PlannerService) EditFeedback(ctx context.Context, a planner.Actor, id, title, body string) (planner.Feedback, error) {
	ctx, done := s.track(ctx, "edit_feedback", a)
	f, err := s.Guard.EditFeedback(ctx, a, id, title, body)
	done(err)
	return f, err
}

func (s *PlannerService) DeleteFeedback(ctx context.Context, a planner.Actor, id string) error {
	ctx, done := s.track(ctx, "delete_feedback", a)
	err := s.Guard.DeleteFeedback(ctx, a, id)
	done(err)
	return err
}

// Assignments is the caller's own assignment log, newest first.
func (s *PlannerService) Assignments(ctx context.Context, a planner.Actor) ([]planner.AssignedTask, error) {
	if a.Role != planner.RoleMentor {
		return nil, fmt.Errorf("%w: mentor role required", planner.ErrForbidden)
	}
	out := []planner.AssignedTask{}
	for _, at := range s.store().AssignedTasks() {
		if at.MentorID == a.UserID {
			out = append(out, at)
		}
	}
	return out, nil
}

// View state.

func (s *PlannerService) loadView(ctx context.Context, a planner.Actor) (planner.ViewState, error) {
	state, ok, err := s.Views.Get(ctx, a.UserID)
	if err != nil {
		return planner.ViewState{}, err
	}
	if ok {
		return state, nil
	}
	if a.Role == planner.RoleMentee {
		return planner.NewViewState(a.UserID, s.today()), nil
	}
	state = planner.NewViewState("", s.today())
	state.View = planner.MentorView
	mentees, err := s.UserRepo.FindMentees(util.MustParseUint(a.UserID))
	if err != nil {
		return planner.ViewState{}, err
	}
	if len(mentees) > 0 {
		state.SelectedMentee = util.FormatID(mentees[0].ID)
	}
	return state, nil
}

func (s *PlannerService) page(ctx context.Context, a planner.Actor, state planner.ViewState) *ViewPage {
	p := &ViewPage{State: state}
	scope := state.Scope()
	if scope == "" {
		return p
	}
	if err := s.Guard.CanRead(ctx, a, scope); err != nil {
		return p
	}
	day := planner.Daily(s.store(), scope, state.SelectedDate)
	p.Day = &day
	return p
}

func (s *PlannerService) saveView(ctx context.Context, a planner.Actor, state planner.ViewState) (*ViewPage, error) {
	if err := s.Views.Save(ctx, a.UserID, state); err != nil {
		return nil, err
	}
	return s.page(ctx, a, state), nil
}

func (s *PlannerService) GetView(ctx context.Context, a planner.Actor) (*ViewPage, error) {
	state, err := s.loadView(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, a, state), nil
}

// UpdateView selects a date and, for mentors, a mentee they manage.
func (s *PlannerService) UpdateView(ctx context.Context, a planner.Actor, rawDate, menteeID string) (*ViewPage, error) {
	state, err := s.loadView(ctx, a)
	if err != nil {
		return nil, err
	}
	if rawDate != "" {
		date, err := planner.ParseDateKey(rawDate)
		if err != nil {
			return nil, err
		}
		if state, err = state.SelectDate(date); err != nil {
			return nil, err
		}
	}
	if menteeID != "" {
		if err := s.Guard.CanRead(ctx, a, menteeID); err != nil {
			return nil, err
		}
		if state, err = state.SelectMentee(menteeID); err != nil {
			return nil, err
		}
	}
	return s.saveView(ctx, a, state)
}

func (s *PlannerService) MoveView(ctx context.Context, a planner.Actor, days, months int) (*ViewPage, error) {
	state, err := s.loadView(ctx, a)
	if err != nil {
		return nil, err
	}
	if months != 0 {
		state = state.MoveMonths(months)
	}
	if days != 0 {
		state = state.MoveDays(days)
	}
	return s.saveView(ctx, a, state)
}

func (s *PlannerService) SwitchView(ctx context.Context, a planner.Actor, view planner.View) (*ViewPage, error) {
	state, err := s.loadView(ctx, a)
	if err != nil {
		return nil, err
	}
	if state, err = state.Switch(view); err != nil {
		return nil, err
	}
	return s.saveView(ctx, a, state)
}
