package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"study_planner_backend/internal/config"
	"study_planner_backend/internal/model"
	"study_planner_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: "test-secret", CookieName: "planner_session", ExpireTime: time.Hour}}
}

func tokenFor(t *testing.T, cfg *config.Config, id uint, role model.UserRole) string {
	t.Helper()
	token, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: id}, Role: role}, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	require.NoError(t, err)
	return token
}

func newEngine(cfg *config.Config, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(cfg))
	if len(roles) > 0 {
		r.Use(RoleMiddleware(roles...))
	}
	r.GET("/me", func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).Actor())
	})
	return r
}

func TestAuthMiddlewareTokenSources(t *testing.T) {
	cfg := testConfig()
	token := tokenFor(t, cfg, 3, model.Mentee)
	r := newEngine(cfg)

	tests := []struct {
		name  string
		setup func(req *http.Request)
		want  int
	}{
		{name: "none", setup: func(*http.Request) {}, want: http.StatusUnauthorized},
		{name: "cookie", setup: func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "planner_session", Value: token})
		}, want: http.StatusOK},
		{name: "bearer", setup: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		}, want: http.StatusOK},
		{name: "query", setup: func(req *http.Request) {
			req.URL.RawQuery = "token=" + token
		}, want: http.StatusOK},
		{name: "garbage", setup: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer nope")
		}, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newEngine(cfg, model.Mentor)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, cfg, 1, model.Mentee))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, cfg, 2, model.Mentor))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// memoryRequestLog stands in for the Redis-backed log.
type memoryRequestLog struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (m *memoryRequestLog) Claim(_ context.Context, scope, id string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[scope+id] {
		return false, nil
	}
	m.seen[scope+id] = true
	return true, nil
}

func (m *memoryRequestLog) Release(_ context.Context, scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, scope+id)
	return nil
}

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &memoryRequestLog{seen: make(map[string]bool)}
	calls := 0
	fail := false

	r := gin.New()
	r.Use(Idempotency(log, time.Minute))
	r.POST("/todos", func(c *gin.Context) {
		calls++
		if fail {
			util.BadRequest(c, "bad")
			return
		}
		util.Created(c, nil)
	})
	r.GET("/todos", func(c *gin.Context) {
		calls++
		util.Success(c, nil)
	})

	do := func(method, id string) int {
		req := httptest.NewRequest(method, "/todos", nil)
		if id != "" {
			req.Header.Set(RequestIDHeader, id)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "r1"))
	assert.Equal(t, http.StatusConflict, do(http.MethodPost, "r1"))
	assert.Equal(t, 1, calls)

	assert.Equal(t, http.StatusCreated, do(http.MethodPost, ""))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, ""))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "r1"))
	assert.Equal(t, 4, calls)

	fail = true
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "r2"))
	fail = false
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "r2"), "failed request may be retried")
}
