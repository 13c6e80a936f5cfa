package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"study_planner_backend/internal/planner"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("%w: empty", planner.ErrValidation), want: http.StatusBadRequest},
		{name: "not found", err: planner.ErrNotFound, want: http.StatusNotFound},
		{name: "forbidden", err: fmt.Errorf("wrap: %w", planner.ErrForbidden), want: http.StatusForbidden},
		{name: "immutable", err: planner.ErrImmutable, want: http.StatusConflict},
		{name: "duplicate", err: ErrDuplicateRequest, want: http.StatusConflict},
		{name: "session", err: ErrSessionExpired, want: http.StatusUnauthorized},
		{name: "unknown", err: errors.New("db down"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	WriteError(c, fmt.Errorf("%w: task t_1", planner.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.OK)
	assert.Contains(t, body.Error, "t_1")

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	WriteError(c, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "서버 오류", body.Error, "internal details are not leaked")
}
