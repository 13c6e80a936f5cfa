package util

import (
	"errors"
	"net/http"

	"study_planner_backend/internal/planner"

	"github.com/gin-gonic/gin"
)

var (
	ErrUserNotFound     = errors.New("해당하는 ID가 없습니다.")
	ErrWrongPassword    = errors.New("비밀번호가 틀렸습니다.")
	ErrSessionExpired   = errors.New("세션이 만료되었습니다.")
	ErrDuplicateRequest = errors.New("이미 처리된 요청입니다.")
)

// StatusOf maps domain errors onto HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, planner.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, planner.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, planner.ErrImmutable), errors.Is(err, ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrWrongPassword):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// WriteError answers with the status for err. Unknown errors are logged and
// reported as a plain server error.
func WriteError(c *gin.Context, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Error(c, code, err.Error())
}
