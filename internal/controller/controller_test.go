package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"study_planner_backend/internal/config"
	"study_planner_backend/internal/middleware"
	"study_planner_backend/internal/model"
	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/service"
	"study_planner_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type users struct {
	mu   sync.Mutex
	byID map[uint]*model.User
}

func (u *users) FindByID(id uint) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if user, ok := u.byID[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *users) FindByLoginID(loginID string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byID {
		if user.LoginID == loginID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *users) FindMentees(mentorID uint) ([]model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []model.User
	for _, user := range u.byID {
		if user.MentorID != nil && *user.MentorID == mentorID {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (u *users) Upsert(user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.byID[user.ID] = user
	return nil
}

func (u *users) Manages(ctx context.Context, mentorID, menteeID string) (bool, error) {
	user, err := u.FindByID(util.MustParseUint(menteeID))
	if err != nil {
		return false, nil
	}
	return user.MentorID != nil && util.FormatID(*user.MentorID) == mentorID, nil
}

type views map[string]planner.ViewState

func (v views) Get(ctx context.Context, userID string) (planner.ViewState, bool, error) {
	s, ok := v[userID]
	return s, ok, nil
}

func (v views) Save(ctx context.Context, userID string, state planner.ViewState) error {
	v[userID] = state
	return nil
}

type blobs map[string][]byte

func (b blobs) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	b[key] = data
	return "/uploads/" + key, nil
}

func (b blobs) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b[key])), nil
}

func (b blobs) Delete(ctx context.Context, key string) error {
	delete(b, key)
	return nil
}

type harness struct {
	cfg    *config.Config
	router *gin.Engine
	store  *planner.Store
	blobs  blobs
}

const (
	mentorID uint = 1
	menteeID uint = 2
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1234"), bcrypt.MinCost)
	require.NoError(t, err)
	mentor := mentorID
	roster := &users{byID: map[uint]*model.User{
		mentorID: {BaseModel: model.BaseModel{ID: mentorID}, LoginID: "mentor1", Username: "멘토1", Role: model.Mentor, Password: string(hash)},
		menteeID: {BaseModel: model.BaseModel{ID: menteeID}, LoginID: "mentee1", Username: "멘티1", Role: model.Mentee, Password: string(hash), MentorID: &mentor},
	}}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: "controller-test", CookieName: "planner_session", ExpireTime: time.Hour},
	}

	store := planner.NewStore(nil, nil)
	guard := planner.NewGuard(store, roster)
	b := blobs{}

	plannerSvc := service.NewPlannerService(guard, roster, views{})
	auth := NewAuthController(service.NewAuthService(roster, cfg), cfg)
	pc := NewPlannerController(plannerSvc)
	mc := NewMentorController(plannerSvc)
	dc := NewTodoDetailController(service.NewTaskDetailService(guard, b, 1), 1)

	r := gin.New()
	r.POST("/api/auth/login", auth.Login)
	r.GET("/api/auth/login", auth.Session)

	api := r.Group("/api", middleware.AuthMiddleware(cfg))
	mentee := api.Group("/mentormentee", middleware.RoleMiddleware(model.Mentee))
	mentee.POST("/todos", pc.AddTodo)
	mentee.DELETE("/days/:date/todos/:todoId", pc.DeleteTodo)
	mentee.PUT("/days/:date/study", pc.SetStudy)

	mentorGroup := api.Group("/mentormentee/mentor", middleware.RoleMiddleware(model.Mentor))
	mentorGroup.POST("/mentees/:menteeId/todos", mc.AssignTodo)
	mentorGroup.DELETE("/mentees/:menteeId/days/:date/todos/:todoId", mc.DeleteTodo)

	api.POST("/todos/:todoId/detail/mentee-files", dc.MenteeFiles)
	api.GET("/todos/:todoId/detail/files/:fileId", dc.DownloadFile)

	return &harness{cfg: cfg, router: r, store: store, blobs: b}
}

func (h *harness) token(t *testing.T, id uint, role model.UserRole) string {
	t.Helper()
	token, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: id}, Role: role}, h.cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	return token
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, util.Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var resp util.Response
	if rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(rec.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func dataField(t *testing.T, resp util.Response, field string) string {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	s, _ := m[field].(string)
	return s
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newHarness(t)

	rec, resp := h.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{LoginID: "mentee1", Password: "pw1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.OK)
	assert.Equal(t, "mentee1", dataField(t, resp, "loginId"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "planner_session" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)

	rec, resp := h.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{LoginID: "mentee1", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.OK)

	rec, _ = h.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{LoginID: "ghost", Password: "pw1234"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"loginId": "mentee1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = h.do(t, http.MethodGet, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.OK)
}

func TestMenteeTodoLifecycle(t *testing.T) {
	h := newHarness(t)
	mentee := h.token(t, menteeID, model.Mentee)

	rec, resp := h.do(t, http.MethodPost, "/api/mentormentee/todos", mentee, AddTodoRequest{Title: "수학 문제집", Date: "2024-06-05"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := dataField(t, resp, "id")
	assert.Equal(t, planner.DefaultSubject, dataField(t, resp, "subject"))

	rec, _ = h.do(t, http.MethodDelete, "/api/mentormentee/days/2024-06-05/todos/"+id, mentee, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.store.TasksOn(planner.DateKey("2024-06-05")))
}

func TestAddTodoValidation(t *testing.T) {
	h := newHarness(t)
	mentee := h.token(t, menteeID, model.Mentee)

	rec, _ := h.do(t, http.MethodPost, "/api/mentormentee/todos", mentee, map[string]string{"date": "2024-06-05"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/mentormentee/todos", mentee, AddTodoRequest{Title: "x", Date: "2024-13-40"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodPut, "/api/mentormentee/days/2024-06-05/study", mentee, StudyRequest{Subject: "   ", Minutes: 30})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoleGates(t *testing.T) {
	h := newHarness(t)
	mentor := h.token(t, mentorID, model.Mentor)
	mentee := h.token(t, menteeID, model.Mentee)

	rec, _ := h.do(t, http.MethodPost, "/api/mentormentee/todos", mentor, AddTodoRequest{Title: "x", Date: "2024-06-05"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/mentormentee/mentor/mentees/2/todos", mentee, AssignTodoRequest{Title: "x", Date: "2024-06-05"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/mentormentee/todos", "", AddTodoRequest{Title: "x", Date: "2024-06-05"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMentorAssignedTodoCannotBeDeleted(t *testing.T) {
	h := newHarness(t)
	mentor := h.token(t, mentorID, model.Mentor)
	mentee := h.token(t, menteeID, model.Mentee)

	rec, resp := h.do(t, http.MethodPost, "/api/mentormentee/mentor/mentees/2/todos", mentor,
		AssignTodoRequest{Title: "영어 단어", Date: "2024-06-05", Subject: "영어"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := dataField(t, resp, "id")
	require.NotEmpty(t, id)

	rec, _ = h.do(t, http.MethodDelete, "/api/mentormentee/days/2024-06-05/todos/"+id, mentee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodDelete, "/api/mentormentee/mentor/mentees/2/days/2024-06-05/todos/"+id, mentor, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Len(t, h.store.TasksOn(planner.DateKey("2024-06-05")), 1)
}

func TestMentorCannotAssignToForeignMentee(t *testing.T) {
	h := newHarness(t)
	stranger := h.token(t, 9, model.Mentor)

	rec, _ := h.do(t, http.MethodPost, "/api/mentormentee/mentor/mentees/2/todos", stranger, AssignTodoRequest{Title: "x", Date: "2024-06-05"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadAndDownload(t *testing.T) {
	h := newHarness(t)
	mentee := h.token(t, menteeID, model.Mentee)

	rec, resp := h.do(t, http.MethodPost, "/api/mentormentee/todos", mentee, AddTodoRequest{Title: "독서", Date: "2024-06-05"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := dataField(t, resp, "id")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("chapter one summary"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/todos/"+id+"/detail/mentee-files", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+mentee)
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var detail struct {
		Data planner.TaskDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Len(t, detail.Data.MenteeFiles, 1)
	fileID := detail.Data.MenteeFiles[0].ID

	req = httptest.NewRequest(http.MethodGet, "/api/todos/"+id+"/detail/files/"+fileID, nil)
	req.Header.Set("Authorization", "Bearer "+mentee)
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chapter one summary", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "notes.txt")
}
