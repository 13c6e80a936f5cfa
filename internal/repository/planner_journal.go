package repository

import (
	"context"
	"strings"

	"study_planner_backend/internal/model"
	"study_planner_backend/internal/planner"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlannerJournal writes every planner mutation through to MySQL and loads the
// whole planner state back at startup.
type PlannerJournal struct {
	DB *gorm.DB
}

var _ planner.Journal = (*PlannerJournal)(nil)

func NewPlannerJournal(db *gorm.DB) *PlannerJournal {
	return &PlannerJournal{DB: db}
}

func (r *PlannerJournal) Tx(ctx context.Context, fn func(j planner.Journal) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PlannerJournal{DB: tx})
	})
}

func (r *PlannerJournal) upsert(ctx context.Context, value interface{}) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

func (r *PlannerJournal) TaskAdded(ctx context.Context, date planner.DateKey, t planner.Task) error {
	todo := &model.Todo{
		StringIDBase: model.StringIDBase{ID: t.ID},
		DateKey:      date.String(),
		MenteeID:     t.MenteeID,
		Title:        t.Text,
		Subject:      t.Subject,
		AssignedBy:   string(t.AssignedBy),
		IsDone:       t.Done,
	}
	return r.DB.WithContext(ctx).Create(todo).Error
}

func (r *PlannerJournal) TaskDoneSet(ctx context.Context, taskID string, done bool) error {
	return r.DB.WithContext(ctx).Model(&model.Todo{}).
		Where("id = ?", taskID).
		Update("is_done", done).Error
}

func (r *PlannerJournal) TaskDeleted(ctx context.Context, taskID string) error {
	return r.DB.WithContext(ctx).Where("id = ?", taskID).Delete(&model.Todo{}).Error
}

func (r *PlannerJournal) TaskAssigned(ctx context.Context, a planner.AssignedTask) error {
	entry := &model.AssignedTaskLog{
		TodoID:     a.ID,
		MentorID:   a.MentorID,
		MenteeID:   a.MenteeID,
		DateKey:    a.Date.String(),
		Title:      a.Text,
		Subject:    a.Subject,
		AssignedAt: a.AssignedAt,
	}
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *PlannerJournal) StudySet(ctx context.Context, menteeID string, date planner.DateKey, subject string, minutes int) error {
	row := &model.StudyLog{MenteeID: menteeID, DateKey: date.String(), Subject: subject, Minutes: minutes}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mentee_id"}, {Name: "date_key"}, {Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"minutes"}),
	}).Create(row).Error
}

func (r *PlannerJournal) StudyCleared(ctx context.Context, menteeID string, date planner.DateKey, subject string) error {
	return r.DB.WithContext(ctx).
		Where("mentee_id = ? AND date_key = ? AND subject = ?", menteeID, date.String(), subject).
		Delete(&model.StudyLog{}).Error
}

// SubjectsSaved rewrites the catalog so positions follow the slice order.
func (r *PlannerJournal) SubjectsSaved(ctx context.Context, subjects []string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Subject{}).Error; err != nil {
			return err
		}
		if len(subjects) == 0 {
			return nil
		}
		rows := make([]model.Subject, len(subjects))
		for i, name := range subjects {
			rows[i] = model.Subject{Name: name, Position: i}
		}
		return tx.Create(&rows).Error
	})
}

func (r *PlannerJournal) CommentSet(ctx context.Context, menteeID string, date planner.DateKey, text string) error {
	row := &model.DailyComment{MenteeID: menteeID, DateKey: date.String(), Body: text}
	if strings.TrimSpace(text) == "" {
		return r.DB.WithContext(ctx).Delete(row).Error
	}
	return r.upsert(ctx, row)
}

func (r *PlannerJournal) FeedbackSaved(ctx context.Context, menteeID string, f planner.Feedback) error {
	return r.upsert(ctx, &model.Feedback{
		StringIDBase: model.StringIDBase{ID: f.ID, CreatedAt: f.CreatedAt},
		MenteeID:     menteeID,
		DateKey:      f.Date.String(),
		Title:        f.Title,
		Body:         f.Body,
	})
}

func (r *PlannerJournal) FeedbackDeleted(ctx context.Context, feedbackID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", feedbackID).Delete(&model.FeedbackSeen{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", feedbackID).Delete(&model.Feedback{}).Error
	})
}

func (r *PlannerJournal) FeedbackSeen(ctx context.Context, menteeID string, ids []string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mentee_id = ?", menteeID).Delete(&model.FeedbackSeen{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		rows := make([]model.FeedbackSeen, len(ids))
		for i, id := range ids {
			rows[i] = model.FeedbackSeen{MenteeID: menteeID, FeedbackID: id}
		}
		return tx.Create(&rows).Error
	})
}

func (r *PlannerJournal) DetailSaved(ctx context.Context, d planner.TaskDetail) error {
	return r.upsert(ctx, &model.TaskDetail{
		DateKey:     d.Date.String(),
		TodoID:      d.TaskID,
		MenteeNote:  d.MenteeNote,
		MentorNote:  d.MentorNote,
		MenteeFiles: toStoredFiles(d.MenteeFiles),
		MentorFiles: toStoredFiles(d.MentorFiles),
	})
}

func (r *PlannerJournal) DetailDeleted(ctx context.Context, key planner.DetailKey) error {
	return r.DB.WithContext(ctx).
		Where("date_key = ? AND todo_id = ?", key.Date.String(), key.TaskID).
		Delete(&model.TaskDetail{}).Error
}

func (r *PlannerJournal) ReminderSaved(ctx context.Context, menteeID string, rem planner.Reminder) error {
	return r.upsert(ctx, &model.Reminder{
		StringIDBase: model.StringIDBase{ID: rem.ID},
		MenteeID:     menteeID,
		Title:        rem.Title,
		DateKey:      rem.Date.String(),
		At:           rem.At,
		IsSent:       rem.Sent,
	})
}

func (r *PlannerJournal) ReminderDeleted(ctx context.Context, reminderID string) error {
	return r.DB.WithContext(ctx).Where("id = ?", reminderID).Delete(&model.Reminder{}).Error
}

// Load reads every planner table into a snapshot for Store.Hydrate.
func (r *PlannerJournal) Load(ctx context.Context) (planner.Snapshot, error) {
	db := r.DB.WithContext(ctx)
	snap := planner.Snapshot{
		TasksByDate:       make(map[planner.DateKey][]planner.Task),
		StudyByDate:       make(map[string]map[planner.DateKey]map[string]int),
		CommentByDate:     make(map[string]map[planner.DateKey]string),
		FeedbackByMentee:  make(map[string][]planner.Feedback),
		SeenByMentee:      make(map[string][]string),
		Details:           make(map[planner.DetailKey]planner.TaskDetail),
		RemindersByMentee: make(map[string][]planner.Reminder),
	}

	var todos []model.Todo
	if err := db.Order("created_at ASC").Find(&todos).Error; err != nil {
		return snap, err
	}
	for _, t := range todos {
		date := planner.DateKey(t.DateKey)
		snap.TasksByDate[date] = append(snap.TasksByDate[date], planner.Task{
			ID:         t.ID,
			Text:       t.Title,
			Done:       t.IsDone,
			AssignedBy: planner.AssignedBy(t.AssignedBy),
			Subject:    t.Subject,
			MenteeID:   t.MenteeID,
		})
	}

	var logs []model.StudyLog
	if err := db.Find(&logs).Error; err != nil {
		return snap, err
	}
	for _, l := range logs {
		days, ok := snap.StudyByDate[l.MenteeID]
		if !ok {
			days = make(map[planner.DateKey]map[string]int)
			snap.StudyByDate[l.MenteeID] = days
		}
		date := planner.DateKey(l.DateKey)
		if days[date] == nil {
			days[date] = make(map[string]int)
		}
		days[date][l.Subject] = l.Minutes
	}

	var subjects []model.Subject
	if err := db.Order("position ASC").Find(&subjects).Error; err != nil {
		return snap, err
	}
	for _, s := range subjects {
		snap.SubjectList = append(snap.SubjectList, s.Name)
	}

	var comments []model.DailyComment
	if err := db.Find(&comments).Error; err != nil {
		return snap, err
	}
	for _, c := range comments {
		if snap.CommentByDate[c.MenteeID] == nil {
			snap.CommentByDate[c.MenteeID] = make(map[planner.DateKey]string)
		}
		snap.CommentByDate[c.MenteeID][planner.DateKey(c.DateKey)] = c.Body
	}

	var feedback []model.Feedback
	if err := db.Order("created_at DESC").Find(&feedback).Error; err != nil {
		return snap, err
	}
	for _, f := range feedback {
		snap.FeedbackByMentee[f.MenteeID] = append(snap.FeedbackByMentee[f.MenteeID], planner.Feedback{
			ID:        f.ID,
			Date:      planner.DateKey(f.DateKey),
			Title:     f.Title,
			Body:      f.Body,
			CreatedAt: f.CreatedAt,
		})
	}

	var seen []model.FeedbackSeen
	if err := db.Find(&seen).Error; err != nil {
		return snap, err
	}
	for _, s := range seen {
		snap.SeenByMentee[s.MenteeID] = append(snap.SeenByMentee[s.MenteeID], s.FeedbackID)
	}

	var assigned []model.AssignedTaskLog
	if err := db.Order("assigned_at DESC, id DESC").Find(&assigned).Error; err != nil {
		return snap, err
	}
	done := make(map[string]bool, len(todos))
	for _, t := range todos {
		done[t.ID] = t.IsDone
	}
	for _, a := range assigned {
		snap.Assignments = append(snap.Assignments, planner.AssignedTask{
			DatedTask: planner.DatedTask{
				Task: planner.Task{
					ID:         a.TodoID,
					Text:       a.Title,
					Done:       done[a.TodoID],
					AssignedBy: planner.AssignedByMentor,
					Subject:    a.Subject,
					MenteeID:   a.MenteeID,
				},
				Date: planner.DateKey(a.DateKey),
			},
			MentorID:   a.MentorID,
			AssignedAt: a.AssignedAt,
		})
	}

	var details []model.TaskDetail
	if err := db.Find(&details).Error; err != nil {
		return snap, err
	}
	for _, d := range details {
		td := planner.TaskDetail{
			Date:        planner.DateKey(d.DateKey),
			TaskID:      d.TodoID,
			MenteeNote:  d.MenteeNote,
			MentorNote:  d.MentorNote,
			MenteeFiles: fromStoredFiles(d.MenteeFiles),
			MentorFiles: fromStoredFiles(d.MentorFiles),
		}
		snap.Details[td.Key()] = td
	}

	var reminders []model.Reminder
	if err := db.Order("remind_at ASC").Find(&reminders).Error; err != nil {
		return snap, err
	}
	for _, rem := range reminders {
		snap.RemindersByMentee[rem.MenteeID] = append(snap.RemindersByMentee[rem.MenteeID], planner.Reminder{
			ID:    rem.ID,
			Title: rem.Title,
			Date:  planner.DateKey(rem.DateKey),
			At:    rem.At,
			Sent:  rem.IsSent,
		})
	}

	return snap, nil
}

func toStoredFiles(files []planner.FileRef) []model.StoredFile {
	out := make([]model.StoredFile, len(files))
	for i, f := range files {
		out[i] = model.StoredFile{
			ID:          f.ID,
			Name:        f.Name,
			Size:        f.Size,
			ContentType: f.ContentType,
			Key:         f.Key,
			URL:         f.URL,
			Image:       f.Image,
		}
	}
	return out
}

func fromStoredFiles(files []model.StoredFile) []planner.FileRef {
	if len(files) == 0 {
		return nil
	}
	out := make([]planner.FileRef, len(files))
	for i, f := range files {
		out[i] = planner.FileRef{
			ID:          f.ID,
			Name:        f.Name,
			Size:        f.Size,
			ContentType: f.ContentType,
			Key:         f.Key,
			URL:         f.URL,
			Image:       f.Image,
		}
	}
	return out
}
