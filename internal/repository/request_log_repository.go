package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RequestLogRepository remembers request ids so retried submissions are
// applied once.
type RequestLogRepository struct {
	Redis *redis.Client
}

func NewRequestLogRepository(rdb *redis.Client) *RequestLogRepository {
	return &RequestLogRepository{Redis: rdb}
}

// Claim returns true the first time scope/requestID is seen within ttl.
func (r *RequestLogRepository) Claim(ctx context.Context, scope, requestID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("planner:req:%s:%s", scope, requestID)
	return r.Redis.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
}

// Release forgets a claim, used when the request failed and may be retried.
func (r *RequestLogRepository) Release(ctx context.Context, scope, requestID string) error {
	key := fmt.Sprintf("planner:req:%s:%s", scope, requestID)
	return r.Redis.Del(ctx, key).Err()
}
