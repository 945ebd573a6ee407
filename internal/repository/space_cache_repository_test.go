package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
)

func newTestSpaceCache(t *testing.T) (*spaceCacheRepository, *stepClock) {
	clock := newStepClock()
	repo := NewSpaceCacheRepository(newTestDB(t)).(*spaceCacheRepository)
	repo.now = clock.Now
	return repo, clock
}

func payloadOf(t *testing.T, row models.SpaceCache) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(row.Payload, &doc))
	return doc
}

func TestSpaceCacheLatestEmpty(t *testing.T) {
	repo, _ := newTestSpaceCache(t)

	_, err := repo.Latest(context.Background(), models.SourceAPOD)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	rows, err := repo.Recent(context.Background(), models.SourceISS, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSpaceCacheLatestAndRecentOrdering(t *testing.T) {
	repo, _ := newTestSpaceCache(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := repo.Write(ctx, models.SourceISS, map[string]interface{}{"n": i})
		require.NoError(t, err)
	}
	_, err := repo.Write(ctx, models.SourceAPOD, map[string]interface{}{"title": "other source"})
	require.NoError(t, err)

	latest, err := repo.Latest(ctx, models.SourceISS)
	require.NoError(t, err)
	assert.Equal(t, 3.0, payloadOf(t, *latest)["n"])

	recent, err := repo.Recent(ctx, models.SourceISS, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3.0, payloadOf(t, recent[0])["n"])
	assert.Equal(t, 2.0, payloadOf(t, recent[1])["n"])
	assert.True(t, recent[0].FetchedAt.After(recent[1].FetchedAt))

	all, err := repo.Recent(ctx, models.SourceISS, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := repo.Count(ctx, models.SourceISS)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSpaceCacheSameTimestampUsesID(t *testing.T) {
	repo, _ := newTestSpaceCache(t)
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, err := repo.Write(ctx, models.SourceNEO, map[string]interface{}{"n": 1})
	require.NoError(t, err)
	_, err = repo.Write(ctx, models.SourceNEO, map[string]interface{}{"n": 2})
	require.NoError(t, err)

	latest, err := repo.Latest(ctx, models.SourceNEO)
	require.NoError(t, err)
	assert.Equal(t, 2.0, payloadOf(t, *latest)["n"])
}

func TestSpaceCacheWriteArrayPayload(t *testing.T) {
	repo, _ := newTestSpaceCache(t)

	row, err := repo.Write(context.Background(), models.SourceFLR, []models.Document{{"flrID": "a"}})
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
	assert.JSONEq(t, `[{"flrID":"a"}]`, string(row.Payload))
}

func TestSpaceCacheRange(t *testing.T) {
	repo, clock := newTestSpaceCache(t)
	ctx := context.Background()
	start := clock.t

	for i := 1; i <= 5; i++ {
		_, err := repo.Write(ctx, models.SourceCME, map[string]interface{}{"n": i})
		require.NoError(t, err)
	}

	// сэмплы записаны на start+1s ... start+5s
	rows, err := repo.Range(ctx, models.SourceCME, start.Add(2*time.Second), start.Add(4*time.Second))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 4.0, payloadOf(t, rows[0])["n"])
	assert.Equal(t, 2.0, payloadOf(t, rows[2])["n"])
}
