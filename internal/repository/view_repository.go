package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"study_planner_backend/internal/planner"

	"github.com/go-redis/redis/v8"
)

const viewStateTTL = 30 * 24 * time.Hour

// ViewRepository keeps each user's planner navigation state in Redis.
type ViewRepository struct {
	Redis *redis.Client
}

func NewViewRepository(rdb *redis.Client) *ViewRepository {
	return &ViewRepository{Redis: rdb}
}

func viewKey(userID string) string {
	return fmt.Sprintf("planner:view:%s", userID)
}

// Get reports false when the user has no saved state yet.
func (r *ViewRepository) Get(ctx context.Context, userID string) (planner.ViewState, bool, error) {
	raw, err := r.Redis.Get(ctx, viewKey(userID)).Bytes()
	if err == redis.Nil {
		return planner.ViewState{}, false, nil
	}
	if err != nil {
		return planner.ViewState{}, false, err
	}
	var state planner.ViewState
	if err := json.Unmarshal(raw, &state); err != nil {
		return planner.ViewState{}, false, err
	}
	return state, true, nil
}

func (r *ViewRepository) Save(ctx context.Context, userID string, state planner.ViewState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, viewKey(userID), raw, viewStateTTL).Err()
}
