package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
)

func TestOSDRSync(t *testing.T) {
	repo := &fakeOSDRRepo{}
	nasa := &fakeNASA{osdr: []models.Document{{"id": "a"}, {"id": "b"}}, errs: map[string]error{}}

	result, err := NewOSDRService(repo, nasa, 20).Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &SyncResult{Processed: 2, Inserted: 2}, result)
	assert.Len(t, repo.docs, 2)
}

func TestOSDRSyncErrors(t *testing.T) {
	nasa := &fakeNASA{errs: map[string]error{"osdr": apperr.ErrUpstream}}
	_, err := NewOSDRService(&fakeOSDRRepo{}, nasa, 20).Sync(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	nasa = &fakeNASA{osdr: []models.Document{{"id": "a"}}, errs: map[string]error{}}
	_, err = NewOSDRService(&fakeOSDRRepo{err: apperr.ErrStorage}, nasa, 20).Sync(context.Background())
	assert.ErrorIs(t, err, apperr.ErrStorage)
}

func TestOSDRListLimits(t *testing.T) {
	repo := &fakeOSDRRepo{}
	svc := NewOSDRService(repo, &fakeNASA{}, 15)

	_, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 15, repo.limit)

	_, err = svc.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.limit)

	_, err = svc.List(context.Background(), 100000)
	require.NoError(t, err)
	assert.Equal(t, maxListLimit, repo.limit)
}
