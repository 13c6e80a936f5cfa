package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"study_planner_backend/internal/model"
	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryUsers stands in for the user repository and doubles as the roster.
type memoryUsers struct {
	mu     sync.Mutex
	byID   map[uint]*model.User
	nextID uint
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[uint]*model.User{}, nextID: 1}
}

func (m *memoryUsers) add(loginID, name string, role model.UserRole, mentorID *uint) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{LoginID: loginID, Username: name, Role: role, MentorID: mentorID}
	u.ID = m.nextID
	m.nextID++
	m.byID[u.ID] = u
	return u
}

func (m *memoryUsers) FindByID(id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *u
	if u.MentorID != nil {
		if mentor, ok := m.byID[*u.MentorID]; ok {
			cp := *mentor
			out.Mentor = &cp
		}
	}
	return &out, nil
}

func (m *memoryUsers) FindByLoginID(loginID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.LoginID == loginID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUsers) FindMentees(mentorID uint) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for id := uint(1); id < m.nextID; id++ {
		u, ok := m.byID[id]
		if ok && u.Role == model.Mentee && u.MentorID != nil && *u.MentorID == mentorID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memoryUsers) Upsert(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.LoginID == user.LoginID {
			u.Username, u.Password, u.Role, u.MentorID = user.Username, user.Password, user.Role, user.MentorID
			return nil
		}
	}
	cp := *user
	cp.ID = m.nextID
	m.nextID++
	m.byID[cp.ID] = &cp
	return nil
}

func (m *memoryUsers) Manages(ctx context.Context, mentorID, menteeID string) (bool, error) {
	u, err := m.FindByID(util.MustParseUint(menteeID))
	if err != nil {
		return false, nil
	}
	return u.Role == model.Mentee && u.MentorID != nil && util.FormatID(*u.MentorID) == mentorID, nil
}

type memoryViews struct {
	states map[string]planner.ViewState
}

func (m *memoryViews) Get(ctx context.Context, userID string) (planner.ViewState, bool, error) {
	s, ok := m.states[userID]
	return s, ok, nil
}

func (m *memoryViews) Save(ctx context.Context, userID string, state planner.ViewState) error {
	if m.states == nil {
		m.states = map[string]planner.ViewState{}
	}
	m.states[userID] = state
	return nil
}

type memoryBlobs struct {
	objects map[string][]byte
	failOn  string
}

func (m *memoryBlobs) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.failOn != "" && strings.Contains(key, m.failOn) {
		return "", io.ErrShortWrite
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return "/uploads/" + key, nil
}

func (m *memoryBlobs) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBlobs) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

// fixture is one mentor with two mentees over an in-memory store.
type fixture struct {
	users   *memoryUsers
	mentor  planner.Actor
	mentee  planner.Actor
	other   planner.Actor
	store   *planner.Store
	guard   *planner.Guard
	planner *PlannerService
	views   *memoryViews
}

var fixedNow = time.Date(2024, 6, 5, 10, 0, 0, 0, time.Local)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newMemoryUsers()
	mentor := users.add("mentor1", "멘토1", model.Mentor, nil)
	mentee := users.add("mentee1", "멘티1", model.Mentee, &mentor.ID)
	other := users.add("mentee2", "멘티2", model.Mentee, nil)

	store := planner.NewStore(nil, nil)
	guard := planner.NewGuard(store, users)
	views := &memoryViews{}
	svc := NewPlannerService(guard, users, views)
	svc.Now = func() time.Time { return fixedNow }

	return &fixture{
		users:   users,
		mentor:  planner.Actor{UserID: util.FormatID(mentor.ID), Role: planner.RoleMentor},
		mentee:  planner.Actor{UserID: util.FormatID(mentee.ID), Role: planner.RoleMentee},
		other:   planner.Actor{UserID: util.FormatID(other.ID), Role: planner.RoleMentee},
		store:   store,
		guard:   guard,
		planner: svc,
		views:   views,
	}
}

// fileHeaders builds multipart headers for the "files" field.
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["files"]
}
