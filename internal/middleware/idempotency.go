package middleware

import (
	"context"
	"net/http"
	"time"

	"study_planner_backend/internal/util"
	"study_planner_backend/pkg/logger"
	"study_planner_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLog claims request ids; see repository.RequestLogRepository.
type RequestLog interface {
	Claim(ctx context.Context, scope, requestID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, scope, requestID string) error
}

// Idempotency rejects a mutating request whose X-Request-ID was already
// handled for the same user within ttl. Requests without the header pass
// through. A failed request releases its id so the client may retry.
func Idempotency(log RequestLog, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		scope := c.ClientIP()
		if user := util.GetUserFromContext(c); user != nil {
			scope = util.FormatID(user.UserID)
		}

		ctx := c.Request.Context()
		first, err := log.Claim(ctx, scope, requestID, ttl)
		if err != nil {
			// Redis 장애 시에는 중복 검사 없이 처리
			logger.Log.Warn("request id claim failed", zap.String("requestId", requestID), zap.Error(err))
			c.Next()
			return
		}
		if !first {
			monitoring.DuplicateRequests.Inc()
			util.Conflict(c, util.ErrDuplicateRequest.Error())
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := log.Release(ctx, scope, requestID); err != nil {
				logger.Log.Warn("request id release failed", zap.String("requestId", requestID), zap.Error(err))
			}
		}
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
