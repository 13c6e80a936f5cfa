package planner

import (
	"fmt"
	"time"
)

type View string

const (
	MenteeView View = "mentee"
	MentorView View = "mentor"
)

func (v View) Valid() bool {
	return v == MenteeView || v == MentorView
}

// ViewState is the navigation state of one planner session. Both views read
// the same store; MenteeView is scoped by MenteeID and MentorView by
// SelectedMentee.
type ViewState struct {
	View           View    `json:"view"`
	MenteeID       string  `json:"menteeId"`
	SelectedMentee string  `json:"selectedMentee"`
	SelectedDate   DateKey `json:"selectedDate"`
}

// NewViewState starts in MenteeView on today.
func NewViewState(menteeID string, today time.Time) ViewState {
	return ViewState{
		View:           MenteeView,
		MenteeID:       menteeID,
		SelectedMentee: menteeID,
		SelectedDate:   KeyOf(today),
	}
}

// Switch changes the active view. Any role may switch; access to data is
// still checked per operation.
func (s ViewState) Switch(v View) (ViewState, error) {
	if !v.Valid() {
		return s, fmt.Errorf("%w: view %q", ErrValidation, v)
	}
	s.View = v
	return s, nil
}

func (s ViewState) MoveDays(n int) ViewState {
	s.SelectedDate = KeyOf(AddDays(s.date(), n))
	return s
}

func (s ViewState) MoveMonths(n int) ViewState {
	s.SelectedDate = KeyOf(AddMonthsKeepDay(s.date(), n))
	return s
}

func (s ViewState) SelectDate(k DateKey) (ViewState, error) {
	if !k.Valid() {
		return s, fmt.Errorf("%w: date %q", ErrValidation, k)
	}
	s.SelectedDate = k
	return s, nil
}

func (s ViewState) SelectMentee(menteeID string) (ViewState, error) {
	if menteeID == "" {
		return s, fmt.Errorf("%w: mentee is required", ErrValidation)
	}
	s.SelectedMentee = menteeID
	return s, nil
}

// Scope is the mentee whose data the current view reads.
func (s ViewState) Scope() string {
	if s.View == MentorView {
		return s.SelectedMentee
	}
	return s.MenteeID
}

func (s ViewState) date() time.Time {
	if t := s.SelectedDate.Time(); !t.IsZero() {
		return t
	}
	return time.Now()
}
