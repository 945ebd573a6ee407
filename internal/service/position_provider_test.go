package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/cache"
	"cosmosfeed/internal/models"
)

var upstreamPosition = &models.Position{
	Timestamp: 1000,
	Latitude:  10,
	Longitude: 20,
	Source:    models.PositionFromUpstream,
}

func TestPositionFromStore(t *testing.T) {
	store := &fakeStore{value: `{"timestamp": 1700000000, "latitude": "12.5", "longitude": -45}`}
	fallback := &fakeOpenNotify{pos: upstreamPosition}

	pos, err := NewPositionProvider(store, fallback).GetCurrentPosition(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &models.Position{
		Timestamp: 1700000000,
		Latitude:  12.5,
		Longitude: -45,
		Source:    models.PositionFromRedis,
	}, pos)
	assert.Zero(t, fallback.calls)
}

func TestPositionFallbackCases(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
	}{
		// ReadLatest реального хранилища отдает ErrNotFound для пустой строки
		{"empty string", &fakeStore{err: fmt.Errorf("%w: key is empty", apperr.ErrNotFound)}},
		{"whitespace passed through", &fakeStore{value: "   "}},
		{"absent", &fakeStore{err: apperr.ErrNotFound}},
		{"unreachable", &fakeStore{err: fmt.Errorf("%w: dial tcp", apperr.ErrStorage)}},
		{"malformed json", &fakeStore{value: `{"timestamp":`}},
		{"missing field", &fakeStore{value: `{"timestamp": 1, "latitude": 2}`}},
		{"non-numeric", &fakeStore{value: `{"timestamp": 1, "latitude": "north", "longitude": 3}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &fakeOpenNotify{pos: upstreamPosition}

			pos, err := NewPositionProvider(tt.store, fallback).GetCurrentPosition(context.Background())
			require.NoError(t, err)

			assert.Equal(t, upstreamPosition, pos)
			assert.Equal(t, 1, fallback.calls)
		})
	}
}

func TestPositionWithoutStore(t *testing.T) {
	fallback := &fakeOpenNotify{pos: upstreamPosition}

	pos, err := NewPositionProvider(nil, fallback).GetCurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, upstreamPosition, pos)
}

func TestPositionBothFail(t *testing.T) {
	upstreamErr := fmt.Errorf("%w: status 503", apperr.ErrUpstream)
	store := &fakeStore{err: errors.New("connection refused")}
	fallback := &fakeOpenNotify{err: upstreamErr}

	pos, err := NewPositionProvider(store, fallback).GetCurrentPosition(context.Background())
	require.Error(t, err)

	assert.Nil(t, pos)
	assert.ErrorIs(t, err, upstreamErr)
	assert.Equal(t, "UPSTREAM_API_ERROR", apperr.Code(err))
	assert.Equal(t, 1, fallback.calls)
}

func TestPositionEmptyRedisValue(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(cache.DefaultPositionKey, ""))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	fallback := &fakeOpenNotify{pos: upstreamPosition}
	provider := NewPositionProvider(cache.NewPositionStore(client, ""), fallback)

	pos, err := provider.GetCurrentPosition(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1000), pos.Timestamp)
	assert.Equal(t, 10.0, pos.Latitude)
	assert.Equal(t, 20.0, pos.Longitude)
	assert.Equal(t, 1, fallback.calls)
}
