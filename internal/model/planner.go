package model

import "time"

// swagger:model Todo
type Todo struct {
	StringIDBase
	DateKey    string `gorm:"type:char(10);index:idx_todo_date_mentee" json:"date"`
	MenteeID   string `gorm:"size:64;index:idx_todo_date_mentee" json:"menteeId"`
	Title      string `gorm:"size:255;not null" json:"title"`
	Subject    string `gorm:"size:64;default:'기타'" json:"subject"`
	AssignedBy string `gorm:"type:enum('self','mentor');default:'self'" json:"assignedBy"`
	IsDone     bool   `gorm:"default:false" json:"isDone"`
}

// Deletable mirrors the rule that mentor assignments stay put.
func (t Todo) Deletable() bool {
	return t.AssignedBy != "mentor"
}

type StudyLog struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	MenteeID string `gorm:"size:64;uniqueIndex:uniq_study_entry"`
	DateKey  string `gorm:"type:char(10);uniqueIndex:uniq_study_entry"`
	Subject  string `gorm:"size:64;uniqueIndex:uniq_study_entry"`
	Minutes  int    `gorm:"not null;default:0"`
}

type Subject struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"size:64;uniqueIndex"`
	Position int    `gorm:"not null"`
}

type DailyComment struct {
	MenteeID string `gorm:"primaryKey;size:64"`
	DateKey  string `gorm:"primaryKey;type:char(10)"`
	Body     string `gorm:"type:text"`
}

type Feedback struct {
	StringIDBase
	MenteeID string `gorm:"size:64;index"`
	DateKey  string `gorm:"type:char(10)"`
	Title    string `gorm:"size:255"`
	Body     string `gorm:"type:text"`
}

type FeedbackSeen struct {
	MenteeID   string `gorm:"primaryKey;size:64"`
	FeedbackID string `gorm:"primaryKey;size:64"`
}

type AssignedTaskLog struct {
	BaseModel
	TodoID     string `gorm:"size:64;index"`
	MentorID   string `gorm:"size:64;index"`
	MenteeID   string `gorm:"size:64;index"`
	DateKey    string `gorm:"type:char(10)"`
	Title      string `gorm:"size:255"`
	Subject    string `gorm:"size:64"`
	AssignedAt time.Time
}

// StoredFile is the persisted form of a task-detail attachment, including
// the storage key clients never see.
type StoredFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
	Key         string `json:"key"`
	URL         string `json:"url"`
	Image       bool   `json:"image"`
}

type TaskDetail struct {
	DateKey     string       `gorm:"primaryKey;type:char(10)"`
	TodoID      string       `gorm:"primaryKey;size:64"`
	MenteeNote  string       `gorm:"type:text"`
	MentorNote  string       `gorm:"type:text"`
	MenteeFiles []StoredFile `gorm:"serializer:json;type:json"`
	MentorFiles []StoredFile `gorm:"serializer:json;type:json"`
	UpdatedAt   time.Time
}

type Reminder struct {
	StringIDBase
	MenteeID string    `gorm:"size:64;index"`
	Title    string    `gorm:"size:255"`
	DateKey  string    `gorm:"type:char(10)"`
	At       time.Time `gorm:"column:remind_at"`
	IsSent   bool      `gorm:"default:false"`
}
