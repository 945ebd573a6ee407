package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
)

const DefaultPositionKey = "latest_telemetry_data"

// PositionStore - быстрый источник последней позиции МКС в Redis.
type PositionStore interface {
	// ReadLatest возвращает сырое значение ключа.
	// Отсутствующий или пустой ключ дает apperr.ErrNotFound.
	ReadLatest(ctx context.Context) (string, error)
	SaveLatest(ctx context.Context, pos *models.Position, ttl time.Duration) error
}

type redisPositionStore struct {
	client *redis.Client
	key    string
}

func NewPositionStore(client *redis.Client, key string) PositionStore {
	if key == "" {
		key = DefaultPositionKey
	}
	return &redisPositionStore{client: client, key: key}
}

func (s *redisPositionStore) ReadLatest(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: key %s", apperr.ErrNotFound, s.key)
	}
	if err != nil {
		return "", fmt.Errorf("%w: redis get %s: %v", apperr.ErrStorage, s.key, err)
	}
	if strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("%w: key %s is empty", apperr.ErrNotFound, s.key)
	}
	return val, nil
}

func (s *redisPositionStore) SaveLatest(ctx context.Context, pos *models.Position, ttl time.Duration) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("marshal position: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", apperr.ErrStorage, s.key, err)
	}
	return nil
}
