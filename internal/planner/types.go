package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxStudyMinutes = 24*60 - 1
	DefaultSubject  = "기타"
)

// DefaultSubjects seeds the subject catalog of a fresh store.
var DefaultSubjects = []string{"국어", "수학", "영어", "과학", "사회", "기타"}

type AssignedBy string

const (
	AssignedBySelf   AssignedBy = "self"
	AssignedByMentor AssignedBy = "mentor"
)

func (a AssignedBy) Valid() bool {
	return a == AssignedBySelf || a == AssignedByMentor
}

// Task is a to-do in one date bucket. An empty MenteeID marks a shared task
// that every mentee sees.
type Task struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Done       bool       `json:"done"`
	AssignedBy AssignedBy `json:"assignedBy"`
	Subject    string     `json:"subject,omitempty"`
	MenteeID   string     `json:"menteeId,omitempty"`
}

// Deletable is false for mentor assignments.
func (t Task) Deletable() bool {
	return t.AssignedBy != AssignedByMentor
}

func (t Task) VisibleTo(menteeID string) bool {
	return t.MenteeID == "" || t.MenteeID == menteeID
}

// NewTask validates the fields and stamps a fresh id.
func NewTask(text, subject string, by AssignedBy, menteeID string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, fmt.Errorf("%w: task text is empty", ErrValidation)
	}
	if !by.Valid() {
		return Task{}, fmt.Errorf("%w: assignedBy %q", ErrValidation, by)
	}
	return Task{
		ID:         newID("t"),
		Text:       text,
		AssignedBy: by,
		Subject:    strings.TrimSpace(subject),
		MenteeID:   menteeID,
	}, nil
}

// DatedTask is a task together with the bucket it lives in.
type DatedTask struct {
	Task
	Date DateKey `json:"dateKey"`
}

// AssignedTask is one row of the mentor assignment log.
type AssignedTask struct {
	DatedTask
	MentorID   string    `json:"mentorId"`
	AssignedAt time.Time `json:"assignedAt"`
}

type Feedback struct {
	ID        string    `json:"id"`
	Date      DateKey   `json:"date"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reminder is stored only; delivery happens elsewhere.
type Reminder struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  DateKey   `json:"date"`
	At    time.Time `json:"time"`
	Sent  bool      `json:"isSent"`
}

// FileSide says whose half of a task detail a file or note belongs to.
type FileSide string

const (
	SideMentee FileSide = "mentee"
	SideMentor FileSide = "mentor"
)

func (s FileSide) Valid() bool {
	return s == SideMentee || s == SideMentor
}

// FileRef points at a blob kept by the storage service.
type FileRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
	Key         string `json:"-"`
	URL         string `json:"url,omitempty"`
	Image       bool   `json:"image"`
}

// NewFileRef stamps an id for an uploaded blob.
func NewFileRef(name string, size int64, contentType, key, url string) FileRef {
	return FileRef{
		ID:          newID("file"),
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Key:         key,
		URL:         url,
		Image:       isImage(name, contentType),
	}
}

func isImage(name, contentType string) bool {
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

type DetailKey struct {
	Date   DateKey
	TaskID string
}

func (k DetailKey) String() string {
	return string(k.Date) + "__" + k.TaskID
}

type TaskDetail struct {
	Date        DateKey   `json:"dateKey"`
	TaskID      string    `json:"taskId"`
	MenteeNote  string    `json:"menteeNote"`
	MenteeFiles []FileRef `json:"menteeFiles"`
	MentorNote  string    `json:"mentorNote"`
	MentorFiles []FileRef `json:"mentorFiles"`
}

func (d TaskDetail) Key() DetailKey {
	return DetailKey{Date: d.Date, TaskID: d.TaskID}
}

func (d TaskDetail) clone() TaskDetail {
	d.MenteeFiles = append([]FileRef(nil), d.MenteeFiles...)
	d.MentorFiles = append([]FileRef(nil), d.MentorFiles...)
	return d
}

func (d *TaskDetail) files(side FileSide) *[]FileRef {
	if side == SideMentor {
		return &d.MentorFiles
	}
	return &d.MenteeFiles
}

// newID is time based with a random suffix; unique enough for one store.
func newID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
