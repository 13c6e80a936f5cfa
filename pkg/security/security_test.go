package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORSFollowsPolicyUpdates(t *testing.T) {
	policy := NewOriginPolicy([]string{"http://a.test"})
	r := gin.New()
	r.Use(CORS(policy))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(origin string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", origin)
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, "http://a.test", call("http://a.test").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, call("http://b.test").Header().Get("Access-Control-Allow-Origin"))

	policy.Update([]string{"http://b.test"})
	assert.Empty(t, call("http://a.test").Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", call("http://b.test").Header().Get("Access-Control-Allow-Credentials"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2, time.Hour)
	defer l.Stop()

	r := gin.New()
	r.Use(l.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	l.Update(10, time.Hour)
	l.cleanup(time.Now().Add(4 * time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
