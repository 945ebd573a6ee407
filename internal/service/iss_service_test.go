package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
)

func newTestISSService(samples *fakeSamples, client *fakeISSClient, store *fakeStore) ISSService {
	provider := NewPositionProvider(store, &fakeOpenNotify{pos: upstreamPosition})
	return NewISSService(samples, client, provider, NewTrendCalculator(samples), store, ISSConfig{PositionTTL: 4 * time.Minute})
}

func TestFetchAndStorePublishesPosition(t *testing.T) {
	samples := newFakeSamples()
	store := &fakeStore{}
	client := &fakeISSClient{doc: models.Document{
		"name": "iss", "timestamp": 1700000000.0, "latitude": 50.1, "longitude": -20.2, "velocity": 27580.0,
	}}

	row, err := newTestISSService(samples, client, store).FetchAndStore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.SourceISS, row.Source)
	require.NotNil(t, store.saved)
	assert.Equal(t, 50.1, store.saved.Latitude)
	assert.Equal(t, int64(1700000000), store.saved.Timestamp)
	assert.Equal(t, 4*time.Minute, store.ttl)
}

func TestFetchAndStoreWithoutPositionStillStores(t *testing.T) {
	samples := newFakeSamples()
	store := &fakeStore{}
	client := &fakeISSClient{doc: models.Document{"unexpected": true}}

	_, err := newTestISSService(samples, client, store).FetchAndStore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, store.saved)
	assert.Len(t, samples.bySource(models.SourceISS), 1)
}

func TestFetchAndStoreErrors(t *testing.T) {
	samples := newFakeSamples()
	client := &fakeISSClient{err: apperr.ErrUpstream}

	_, err := newTestISSService(samples, client, &fakeStore{}).FetchAndStore(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	samples.err = apperr.ErrStorage
	client.err = nil
	client.doc = models.Document{"latitude": 1.0}
	_, err = newTestISSService(samples, client, &fakeStore{}).FetchAndStore(context.Background())
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

func TestGetLastSample(t *testing.T) {
	samples := newFakeSamples()
	svc := newTestISSService(samples, &fakeISSClient{}, &fakeStore{})

	row, err := svc.GetLastSample(context.Background())
	require.NoError(t, err)
	assert.Nil(t, row)

	samples.add(models.SourceISS, time.Now(), map[string]interface{}{"latitude": 1})
	row, err = svc.GetLastSample(context.Background())
	require.NoError(t, err)
	require.NotNil(t, row)

	samples.err = errors.New("db down")
	_, err = svc.GetLastSample(context.Background())
	assert.Error(t, err)
}
