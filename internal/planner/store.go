package planner

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store is the single in-memory source of truth for planner data. Writers are
// serialised by mu; each mutation validates, hands the change to the journal,
// and only then applies it, so a failed write leaves memory untouched.
type Store struct {
	mu      sync.RWMutex
	journal Journal
	state   Snapshot
	now     func() time.Time
}

func NewStore(journal Journal, subjects []string) *Store {
	if journal == nil {
		journal = NopJournal{}
	}
	if len(subjects) == 0 {
		subjects = DefaultSubjects
	}
	return &Store{
		journal: journal,
		state:   emptySnapshot(subjects),
		now:     time.Now,
	}
}

func emptySnapshot(subjects []string) Snapshot {
	return Snapshot{
		TasksByDate:       make(map[DateKey][]Task),
		StudyByDate:       make(map[string]map[DateKey]map[string]int),
		CommentByDate:     make(map[string]map[DateKey]string),
		SubjectList:       slices.Clone(subjects),
		FeedbackByMentee:  make(map[string][]Feedback),
		SeenByMentee:      make(map[string][]string),
		Details:           make(map[DetailKey]TaskDetail),
		RemindersByMentee: make(map[string][]Reminder),
	}
}

// Hydrate replaces the whole state with snap. An empty subject list keeps the
// current catalog.
func (s *Store) Hydrate(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := emptySnapshot(s.state.SubjectList)
	if len(snap.SubjectList) > 0 {
		next.SubjectList = slices.Clone(snap.SubjectList)
	}
	mergeSnapshot(&next, &snap)
	s.state = next
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := emptySnapshot(s.state.SubjectList)
	mergeSnapshot(&out, &s.state)
	return out
}

func mergeSnapshot(dst, src *Snapshot) {
	for k, v := range src.TasksByDate {
		dst.TasksByDate[k] = slices.Clone(v)
	}
	for mentee, days := range src.StudyByDate {
		dst.StudyByDate[mentee] = make(map[DateKey]map[string]int, len(days))
		for day, bySubject := range days {
			m := make(map[string]int, len(bySubject))
			for sub, min := range bySubject {
				m[sub] = min
			}
			dst.StudyByDate[mentee][day] = m
		}
	}
	for mentee, days := range src.CommentByDate {
		m := make(map[DateKey]string, len(days))
		for day, text := range days {
			m[day] = text
		}
		dst.CommentByDate[mentee] = m
	}
	for k, v := range src.FeedbackByMentee {
		dst.FeedbackByMentee[k] = slices.Clone(v)
	}
	for k, v := range src.SeenByMentee {
		dst.SeenByMentee[k] = slices.Clone(v)
	}
	dst.Assignments = slices.Clone(src.Assignments)
	for k, v := range src.Details {
		dst.Details[k] = v.clone()
	}
	for k, v := range src.RemindersByMentee {
		dst.RemindersByMentee[k] = slices.Clone(v)
	}
}

// Read accessors.

func (s *Store) Dates() []DateKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Dates()
}

func (s *Store) TasksOn(date DateKey) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.TasksOn(date)
}

func (s *Store) Study(menteeID string, date DateKey) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Study(menteeID, date)
}

func (s *Store) Comment(menteeID string, date DateKey) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Comment(menteeID, date)
}

func (s *Store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Subjects()
}

func (s *Store) Feedback(menteeID string) []Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Feedback(menteeID)
}

func (s *Store) SeenFeedback(menteeID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SeenFeedback(menteeID)
}

func (s *Store) AssignedTasks() []AssignedTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AssignedTasks()
}

func (s *Store) Reminders(menteeID string) []Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Reminders(menteeID)
}

// FindTask looks a task up by id across all date buckets.
func (s *Store) FindTask(taskID string) (DatedTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for date, bucket := range s.state.TasksByDate {
		if i := indexOfTask(bucket, taskID); i >= 0 {
			return DatedTask{Task: bucket[i], Date: date}, true
		}
	}
	return DatedTask{}, false
}

// FindFeedback returns the feedback with id and the mentee it belongs to.
func (s *Store) FindFeedback(id string) (string, Feedback, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for mentee, list := range s.state.FeedbackByMentee {
		if i := indexOfFeedback(list, id); i >= 0 {
			return mentee, list[i], true
		}
	}
	return "", Feedback{}, false
}

func (s *Store) Detail(key DetailKey) TaskDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.state.Details[key]; ok {
		return d.clone()
	}
	return TaskDetail{Date: key.Date, TaskID: key.TaskID}
}

// Tasks.

func (s *Store) AddTask(ctx context.Context, date DateKey, text, subject string, by AssignedBy, menteeID string) (Task, error) {
	if !date.Valid() {
		return Task{}, fmt.Errorf("%w: date %q", ErrValidation, date)
	}
	task, err := NewTask(text, subject, by, menteeID)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.journal.TaskAdded(ctx, date, task); err != nil {
		return Task{}, err
	}
	s.state.TasksByDate[date] = append(s.state.TasksByDate[date], task)
	return task, nil
}

// AssignTask adds a mentor task, records it in the assignment log and seeds
// the mentor note of its detail when one is given.
func (s *Store) AssignTask(ctx context.Context, mentorID, menteeID string, date DateKey, text, subject, mentorNote string) (AssignedTask, error) {
	if !date.Valid() {
		return AssignedTask{}, fmt.Errorf("%w: date %q", ErrValidation, date)
	}
	if menteeID == "" {
		return AssignedTask{}, fmt.Errorf("%w: mentee is required", ErrValidation)
	}
	task, err := NewTask(text, subject, AssignedByMentor, menteeID)
	if err != nil {
		return AssignedTask{}, err
	}
	entry := AssignedTask{
		DatedTask:  DatedTask{Task: task, Date: date},
		MentorID:   mentorID,
		AssignedAt: s.now(),
	}
	note := strings.TrimSpace(mentorNote)
	detail := TaskDetail{Date: date, TaskID: task.ID, MentorNote: note}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.journal.Tx(ctx, func(j Journal) error {
		if err := j.TaskAdded(ctx, date, task); err != nil {
			return err
		}
		if err := j.TaskAssigned(ctx, entry); err != nil {
			return err
		}
		if note != "" {
			return j.DetailSaved(ctx, detail)
		}
		return nil
	})
	if err != nil {
		return AssignedTask{}, err
	}
	s.state.TasksByDate[date] = append(s.state.TasksByDate[date], task)
	s.state.Assignments = append([]AssignedTask{entry}, s.state.Assignments...)
	if note != "" {
		s.state.Details[detail.Key()] = detail
	}
	return entry, nil
}

func (s *Store) ToggleTask(ctx context.Context, date DateKey, taskID string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.state.TasksByDate[date]
	i := indexOfTask(bucket, taskID)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: task %s on %s", ErrNotFound, taskID, date)
	}
	next := bucket[i]
	next.Done = !next.Done
	if err := s.journal.TaskDoneSet(ctx, taskID, next.Done); err != nil {
		return Task{}, err
	}
	bucket[i] = next
	return next, nil
}

// DeleteTask removes a task unless it was assigned by a mentor, in which case
// it reports false and leaves the bucket as it was. The task's detail goes
// with it in the same journal transaction.
func (s *Store) DeleteTask(ctx context.Context, date DateKey, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.state.TasksByDate[date]
	i := indexOfTask(bucket, taskID)
	if i < 0 {
		return false, fmt.Errorf("%w: task %s on %s", ErrNotFound, taskID, date)
	}
	if !bucket[i].Deletable() {
		return false, nil
	}
	key := DetailKey{Date: date, TaskID: taskID}
	_, hasDetail := s.state.Details[key]
	err := s.journal.Tx(ctx, func(j Journal) error {
		if err := j.TaskDeleted(ctx, taskID); err != nil {
			return err
		}
		if hasDetail {
			return j.DetailDeleted(ctx, key)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	delete(s.state.Details, key)
	bucket = slices.Delete(bucket, i, i+1)
	if len(bucket) == 0 {
		delete(s.state.TasksByDate, date)
	} else {
		s.state.TasksByDate[date] = bucket
	}
	return true, nil
}

// Subjects and study time.

// AddSubject appends "새 과목", "새 과목2", ... whichever is free first.
func (s *Store) AddSubject(ctx context.Context) (string, error) {
	const base = "새 과목"

	s.mu.Lock()
	defer s.mu.Unlock()

	name := base
	for i := 2; slices.Contains(s.state.SubjectList, name); i++ {
		name = base + strconv.Itoa(i)
	}
	next := append(slices.Clone(s.state.SubjectList), name)
	if err := s.journal.SubjectsSaved(ctx, next); err != nil {
		return "", err
	}
	s.state.SubjectList = next
	return name, nil
}

// RenameSubject renames a catalog entry and moves the minutes logged under the
// old name on current, for that mentee only. Other dates keep the old key.
// It reports false without touching anything when the new name is blank,
// unchanged or already taken.
func (s *Store) RenameSubject(ctx context.Context, menteeID string, current DateKey, oldName, newName string) (bool, error) {
	newName = strings.TrimSpace(newName)

	s.mu.Lock()
	defer s.mu.Unlock()

	if newName == "" || newName == oldName || slices.Contains(s.state.SubjectList, newName) {
		return false, nil
	}
	idx := slices.Index(s.state.SubjectList, oldName)
	if idx < 0 {
		return false, fmt.Errorf("%w: subject %q", ErrNotFound, oldName)
	}
	catalog := slices.Clone(s.state.SubjectList)
	catalog[idx] = newName
	minutes, logged := s.state.StudyByDate[menteeID][current][oldName]

	err := s.journal.Tx(ctx, func(j Journal) error {
		if err := j.SubjectsSaved(ctx, catalog); err != nil {
			return err
		}
		if logged {
			if err := j.StudyCleared(ctx, menteeID, current, oldName); err != nil {
				return err
			}
		}
		return j.StudySet(ctx, menteeID, current, newName, minutes)
	})
	if err != nil {
		return false, err
	}

	s.state.SubjectList = catalog
	day := s.studyDay(menteeID, current)
	delete(day, oldName)
	day[newName] = minutes
	return true, nil
}

// DeleteSubject drops a catalog entry and the minutes logged for it on current.
func (s *Store) DeleteSubject(ctx context.Context, menteeID string, current DateKey, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.state.SubjectList, name)
	if idx < 0 {
		return fmt.Errorf("%w: subject %q", ErrNotFound, name)
	}
	catalog := slices.Delete(slices.Clone(s.state.SubjectList), idx, idx+1)
	_, logged := s.state.StudyByDate[menteeID][current][name]

	err := s.journal.Tx(ctx, func(j Journal) error {
		if err := j.SubjectsSaved(ctx, catalog); err != nil {
			return err
		}
		if logged {
			return j.StudyCleared(ctx, menteeID, current, name)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.state.SubjectList = catalog
	if logged {
		delete(s.state.StudyByDate[menteeID][current], name)
	}
	return nil
}

// SetStudyMinutes stores minutes clamped to [0, MaxStudyMinutes] and returns
// the stored value.
func (s *Store) SetStudyMinutes(ctx context.Context, menteeID string, date DateKey, subject string, minutes int) (int, error) {
	subject = strings.TrimSpace(subject)
	if menteeID == "" || subject == "" || !date.Valid() {
		return 0, fmt.Errorf("%w: study entry needs mentee, date and subject", ErrValidation)
	}
	minutes = clamp(minutes, 0, MaxStudyMinutes)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.journal.StudySet(ctx, menteeID, date, subject, minutes); err != nil {
		return 0, err
	}
	s.studyDay(menteeID, date)[subject] = minutes
	return minutes, nil
}

// SetStudyHM takes an hours/minutes pair the way the planner form sends it.
func (s *Store) SetStudyHM(ctx context.Context, menteeID string, date DateKey, subject string, hours, minutes int) (int, error) {
	h := clamp(hours, 0, 24)
	m := clamp(minutes, 0, 59)
	return s.SetStudyMinutes(ctx, menteeID, date, subject, h*60+m)
}

func (s *Store) studyDay(menteeID string, date DateKey) map[string]int {
	days, ok := s.state.StudyByDate[menteeID]
	if !ok {
		days = make(map[DateKey]map[string]int)
		s.state.StudyByDate[menteeID] = days
	}
	day, ok := days[date]
	if !ok {
		day = make(map[string]int)
		days[date] = day
	}
	return day
}

// SetComment overwrites the mentee's comment for date; blank text clears it.
func (s *Store) SetComment(ctx context.Context, menteeID string, date DateKey, text string) error {
	if menteeID == "" || !date.Valid() {
		return fmt.Errorf("%w: comment needs mentee and date", ErrValidation)
	}

	if strings.TrimSpace(text) == "" {
		text = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.journal.CommentSet(ctx, menteeID, date, text); err != nil {
		return err
	}
	days, ok := s.state.CommentByDate[menteeID]
	if !ok {
		days = make(map[DateKey]string)
		s.state.CommentByDate[menteeID] = days
	}
	if text == "" {
		delete(days, date)
	} else {
		days[date] = text
	}
	return nil
}

// Feedback.

func (s *Store) AddFeedback(ctx context.Context, menteeID string, date DateKey, title, body string) (Feedback, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if menteeID == "" || title == "" || body == "" || !date.Valid() {
		return Feedback{}, fmt.Errorf("%w: feedback needs mentee, date, title and body", ErrValidation)
	}
	f := Feedback{ID: newID("f"), Date: date, Title: title, Body: body, CreatedAt: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.journal.FeedbackSaved(ctx, menteeID, f); err != nil {
		return Feedback{}, err
	}
	s.state.FeedbackByMentee[menteeID] = append([]Feedback{f}, s.state.FeedbackByMentee[menteeID]...)
	return f, nil
}

func (s *Store) EditFeedback(ctx context.Context, menteeID, id, title, body string) (Feedback, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" || body == "" {
		return Feedback{}, fmt.Errorf("%w: feedback title and body are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.state.FeedbackByMentee[menteeID]
	i := indexOfFeedback(list, id)
	if i < 0 {
		return Feedback{}, fmt.Errorf("%w: feedback %s", ErrNotFound, id)
	}
	next := list[i]
	next.Title, next.Body = title, body
	if err := s.journal.FeedbackSaved(ctx, menteeID, next); err != nil {
		return Feedback{}, err
	}
	list[i] = next
	return next, nil
}

func (s *Store) DeleteFeedback(ctx context.Context, menteeID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.state.FeedbackByMentee[menteeID]
	i := indexOfFeedback(list, id)
	if i < 0 {
		return fmt.Errorf("%w: feedback %s", ErrNotFound, id)
	}
	if err := s.journal.FeedbackDeleted(ctx, id); err != nil {
		return err
	}
	s.state.FeedbackByMentee[menteeID] = slices.Delete(list, i, i+1)
	return nil
}

// MarkFeedbackSeen sets the mentee's seen list to every current feedback id.
// Feedback written afterwards stays unseen.
func (s *Store) MarkFeedbackSeen(ctx context.Context, menteeID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.state.FeedbackByMentee[menteeID]
	ids := make([]string, len(list))
	for i, f := range list {
		ids[i] = f.ID
	}
	if err := s.journal.FeedbackSeen(ctx, menteeID, ids); err != nil {
		return nil, err
	}
	s.state.SeenByMentee[menteeID] = ids
	return slices.Clone(ids), nil
}

// Task details.

func (s *Store) SetNote(ctx context.Context, key DetailKey, side FileSide, note string) (TaskDetail, error) {
	return s.updateDetail(ctx, key, func(d *TaskDetail) error {
		switch side {
		case SideMentee:
			d.MenteeNote = note
		case SideMentor:
			d.MentorNote = note
		default:
			return fmt.Errorf("%w: side %q", ErrValidation, side)
		}
		return nil
	})
}

func (s *Store) AttachFiles(ctx context.Context, key DetailKey, side FileSide, files []FileRef) (TaskDetail, error) {
	if !side.Valid() || len(files) == 0 {
		return TaskDetail{}, fmt.Errorf("%w: nothing to attach", ErrValidation)
	}
	return s.updateDetail(ctx, key, func(d *TaskDetail) error {
		list := d.files(side)
		*list = append(*list, files...)
		return nil
	})
}

// RemoveFile detaches a file and returns its reference so the blob can be dropped.
func (s *Store) RemoveFile(ctx context.Context, key DetailKey, side FileSide, fileID string) (FileRef, error) {
	var removed FileRef
	_, err := s.updateDetail(ctx, key, func(d *TaskDetail) error {
		list := d.files(side)
		i := slices.IndexFunc(*list, func(f FileRef) bool { return f.ID == fileID })
		if i < 0 {
			return fmt.Errorf("%w: file %s", ErrNotFound, fileID)
		}
		removed = (*list)[i]
		*list = slices.Delete(*list, i, i+1)
		return nil
	})
	return removed, err
}

func (s *Store) updateDetail(ctx context.Context, key DetailKey, fn func(d *TaskDetail) error) (TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOfTask(s.state.TasksByDate[key.Date], key.TaskID) < 0 {
		return TaskDetail{}, fmt.Errorf("%w: task %s on %s", ErrNotFound, key.TaskID, key.Date)
	}
	d, ok := s.state.Details[key]
	if ok {
		d = d.clone()
	} else {
		d = TaskDetail{Date: key.Date, TaskID: key.TaskID}
	}
	if err := fn(&d); err != nil {
		return TaskDetail{}, err
	}
	if err := s.journal.DetailSaved(ctx, d); err != nil {
		return TaskDetail{}, err
	}
	s.state.Details[key] = d
	return d.clone(), nil
}

// Reminders.

func (s *Store) AddReminder(ctx context.Context, menteeID, title string, date DateKey, at time.Time) (Reminder, error) {
	title = strings.TrimSpace(title)
	if menteeID == "" || title == "" || !date.Valid() {
		return Reminder{}, fmt.Errorf("%w: reminder needs mentee, title and date", ErrValidation)
	}
	r := Reminder{ID: newID("r"), Title: title, Date: date, At: at}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.journal.ReminderSaved(ctx, menteeID, r); err != nil {
		return Reminder{}, err
	}
	s.state.RemindersByMentee[menteeID] = append(s.state.RemindersByMentee[menteeID], r)
	return r, nil
}

func (s *Store) DeleteReminder(ctx context.Context, menteeID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.state.RemindersByMentee[menteeID]
	i := slices.IndexFunc(list, func(r Reminder) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: reminder %s", ErrNotFound, id)
	}
	if err := s.journal.ReminderDeleted(ctx, id); err != nil {
		return err
	}
	s.state.RemindersByMentee[menteeID] = slices.Delete(list, i, i+1)
	return nil
}

func indexOfTask(bucket []Task, id string) int {
	return slices.IndexFunc(bucket, func(t Task) bool { return t.ID == id })
}

func indexOfFeedback(list []Feedback, id string) int {
	return slices.IndexFunc(list, func(f Feedback) bool { return f.ID == id })
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
