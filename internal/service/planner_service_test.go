package service

import (
	"context"
	"testing"

	"study_planner_backend/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo, err := f.planner.AddTask(ctx, f.mentee, "2024-06-05", "수학 문제집 3쪽", "")
	require.NoError(t, err)
	assert.Equal(t, planner.DefaultSubject, todo.Subject)
	assert.True(t, todo.Deletable)

	_, err = f.planner.AssignTask(ctx, f.mentor, f.mentee.UserID, "2024-06-05", "영어 단어", "영어", "오늘 안에")
	require.NoError(t, err)
	_, err = f.planner.SetStudy(ctx, f.mentee, "2024-06-05", "수학", 90, nil)
	require.NoError(t, err)

	d, err := f.planner.Dashboard(ctx, f.mentee, "")
	require.NoError(t, err)
	assert.Equal(t, "멘티1", d.Me.Username)
	require.NotNil(t, d.Mentor)
	assert.Equal(t, "멘토1", d.Mentor.Username)
	assert.Equal(t, planner.DateKey("2024-06-05"), d.Date)
	assert.Len(t, d.Todos, 2)
	assert.Equal(t, 2, d.Remaining)
	assert.Equal(t, 90, d.StudyTime["수학"])
	assert.Equal(t, 0, d.StudyTime["국어"])
	assert.Len(t, d.WeekSummary, 7)
	assert.Equal(t, planner.DateKey("2024-06-03"), d.WeekSummary[0].Date)
	assert.Len(t, d.Reminders.TodayUndone, 2)

	_, err = f.planner.Dashboard(ctx, f.mentor, "")
	assert.ErrorIs(t, err, planner.ErrForbidden)

	_, err = f.planner.Dashboard(ctx, f.mentee, "06/05/2024")
	assert.ErrorIs(t, err, planner.ErrValidation)
}

func TestAddTaskRequiresValidDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.planner.AddTask(context.Background(), f.mentee, "", "title", "수학")
	assert.ErrorIs(t, err, planner.ErrValidation)
}

func TestSetStudyHoursAndMinutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := 1
	total, err := f.planner.SetStudy(ctx, f.mentee, "2024-06-05", "국어", 30, &h)
	require.NoError(t, err)
	assert.Equal(t, 90, total)

	_, err = f.planner.SetStudy(ctx, f.mentor, "2024-06-05", "국어", 30, nil)
	assert.ErrorIs(t, err, planner.ErrForbidden)
}

func TestMentorDeletePaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own, err := f.planner.AddTask(ctx, f.mentee, "2024-06-05", "복습", "국어")
	require.NoError(t, err)
	assigned, err := f.planner.AssignTask(ctx, f.mentor, f.mentee.UserID, "2024-06-05", "숙제", "수학", "")
	require.NoError(t, err)

	err = f.planner.DeleteTask(ctx, f.mentee, "2024-06-05", assigned.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)

	err = f.planner.DeleteMenteeTask(ctx, f.mentor, f.mentee.UserID, "2024-06-05", assigned.ID)
	assert.ErrorIs(t, err, planner.ErrImmutable)

	err = f.planner.DeleteMenteeTask(ctx, f.mentor, f.mentee.UserID, "2024-06-04", own.ID)
	assert.ErrorIs(t, err, planner.ErrNotFound)

	err = f.planner.DeleteMenteeTask(ctx, f.mentor, f.other.UserID, "2024-06-05", own.ID)
	assert.ErrorIs(t, err, planner.ErrForbidden)

	require.NoError(t, f.planner.DeleteMenteeTask(ctx, f.mentor, f.mentee.UserID, "2024-06-05", own.ID))
	assert.Len(t, f.store.TasksOn("2024-06-05"), 1)
}

func TestMenteesAndOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planner.AssignTask(ctx, f.mentor, f.mentee.UserID, "2024-06-05", "숙제", "수학", "")
	require.NoError(t, err)
	_, err = f.planner.AddTask(ctx, f.mentee, "2024-06-01", "예습", "")
	require.NoError(t, err)
	_, err = f.planner.AddFeedback(ctx, f.mentor, f.mentee.UserID, "2024-06-05", "잘했어요", "계속 유지")
	require.NoError(t, err)

	mentees, err := f.planner.Mentees(ctx, f.mentor)
	require.NoError(t, err)
	require.Len(t, mentees, 1)
	assert.Equal(t, f.mentee.UserID, mentees[0].ID)
	assert.Equal(t, 1, mentees[0].Remaining)
	assert.Equal(t, 1, mentees[0].UnseenFeedback)

	ov, err := f.planner.MenteeOverview(ctx, f.mentor, f.mentee.UserID, "", "")
	require.NoError(t, err)
	require.Len(t, ov.Tasks, 2)
	assert.Equal(t, planner.DateKey("2024-06-05"), ov.Tasks[0].Date)
	assert.Len(t, ov.Feedback, 1)

	ov, err = f.planner.MenteeOverview(ctx, f.mentor, f.mentee.UserID, "2024-06-03", "2024-06-09")
	require.NoError(t, err)
	assert.Len(t, ov.Tasks, 1)

	_, err = f.planner.MenteeOverview(ctx, f.mentor, f.mentee.UserID, "2024-06-09", "2024-06-03")
	assert.ErrorIs(t, err, planner.ErrValidation)

	_, err = f.planner.MenteeOverview(ctx, f.mentor, f.other.UserID, "", "")
	assert.ErrorIs(t, err, planner.ErrForbidden)

	_, err = f.planner.Mentees(ctx, f.mentee)
	assert.ErrorIs(t, err, planner.ErrForbidden)
}

func TestAssignmentsAreScopedToMentor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planner.AssignTask(ctx, f.mentor, f.mentee.UserID, "2024-06-05", "첫째", "", "")
	require.NoError(t, err)
	_, err = f.planner.AssignTask(ctx, f.mentor, f.mentee.UserID, "2024-06-06", "둘째", "", "")
	require.NoError(t, err)

	list, err := f.planner.Assignments(ctx, f.mentor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "둘째", list[0].Text)

	strangerMentor := planner.Actor{UserID: "99", Role: planner.RoleMentor}
	list, err = f.planner.Assignments(ctx, strangerMentor)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWeekAndCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planner.AddTask(ctx, f.mentee, "2024-06-04", "a", "")
	require.NoError(t, err)
	_, err = f.planner.AddFeedback(ctx, f.mentor, f.mentee.UserID, "2024-06-09", "주말", "")
	assert.ErrorIs(t, err, planner.ErrValidation)
	_, err = f.planner.AddFeedback(ctx, f.mentor, f.mentee.UserID, "2024-06-09", "주말", "주말 정리")
	require.NoError(t, err)

	week, err := f.planner.Week(ctx, f.mentee, f.mentee.UserID, "2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, planner.DateKey("2024-06-03"), week.Start)
	assert.Equal(t, planner.DateKey("2024-06-09"), week.End)
	assert.Len(t, week.Tasks, 1)
	assert.Len(t, week.Feedback, 1)

	cal, err := f.planner.Calendar(ctx, f.mentee, f.mentee.UserID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-06", cal.Month)
	assert.Len(t, cal.Days, 42)
	assert.Equal(t, planner.DateKey("2024-05-27"), cal.WeekStart[0])

	_, err = f.planner.Week(ctx, f.other, f.mentee.UserID, "")
	assert.ErrorIs(t, err, planner.ErrForbidden)
}

func TestViewStateFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.planner.GetView(ctx, f.mentee)
	require.NoError(t, err)
	assert.Equal(t, planner.MenteeView, page.State.View)
	assert.Equal(t, planner.DateKey("2024-06-05"), page.State.SelectedDate)
	require.NotNil(t, page.Day)

	page, err = f.planner.MoveView(ctx, f.mentee, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, planner.DateKey("2024-06-06"), page.State.SelectedDate)

	page, err = f.planner.MoveView(ctx, f.mentee, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, planner.DateKey("2024-05-06"), page.State.SelectedDate)
	assert.Equal(t, planner.DateKey("2024-05-06"), f.views.states[f.mentee.UserID].SelectedDate)

	// switching is open to any role, reading is not
	page, err = f.planner.SwitchView(ctx, f.mentee, planner.MentorView)
	require.NoError(t, err)
	assert.Equal(t, planner.MentorView, page.State.View)

	_, err = f.planner.SwitchView(ctx, f.mentee, planner.View("admin"))
	assert.ErrorIs(t, err, planner.ErrValidation)

	_, err = f.planner.UpdateView(ctx, f.mentee, "", f.other.UserID)
	assert.ErrorIs(t, err, planner.ErrForbidden)
}

func TestMentorViewStartsOnFirstMentee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.planner.GetView(ctx, f.mentor)
	require.NoError(t, err)
	assert.Equal(t, planner.MentorView, page.State.View)
	assert.Equal(t, f.mentee.UserID, page.State.Scope())
	require.NotNil(t, page.Day)

	page, err = f.planner.UpdateView(ctx, f.mentor, "2024-07-01", "")
	require.NoError(t, err)
	assert.Equal(t, planner.DateKey("2024-07-01"), page.State.SelectedDate)
}

func TestRemindersPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.planner.AddReminder(ctx, f.mentee, "모의고사", "2024-06-06", fixedNow)
	require.NoError(t, err)
	_, err = f.planner.AddTask(ctx, f.mentee, "2024-06-06", "내일 할 일", "")
	require.NoError(t, err)

	page, err := f.planner.Reminders(ctx, f.mentee)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Summary.TomorrowCount)

	require.NoError(t, f.planner.DeleteReminder(ctx, f.mentee, r.ID))
	page, err = f.planner.Reminders(ctx, f.mentee)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
