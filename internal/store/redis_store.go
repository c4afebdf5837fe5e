package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/crisphq/crisp-interview/internal/models"
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, state *models.SessionState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, RootKey, b, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context) (*models.SessionState, bool, error) {
	raw, err := s.rdb.Get(ctx, RootKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var state models.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// data corrupt: treat as miss by deleting
		_ = s.rdb.Del(ctx, RootKey).Err()
		return nil, false, nil
	}
	return &state, true, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, RootKey).Err()
}
