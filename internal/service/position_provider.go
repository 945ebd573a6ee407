package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/cache"
	"cosmosfeed/internal/clients"
	"cosmosfeed/internal/models"
	"cosmosfeed/internal/utils"
)

// PositionProvider отдает текущую позицию: сначала Redis, при любой
// неудаче один запрос к open-notify.
type PositionProvider interface {
	GetCurrentPosition(ctx context.Context) (*models.Position, error)
}

type positionProvider struct {
	store    cache.PositionStore
	fallback clients.OpenNotifyClient
}

// NewPositionProvider: store может быть nil, если Redis недоступен при старте.
func NewPositionProvider(store cache.PositionStore, fallback clients.OpenNotifyClient) PositionProvider {
	return &positionProvider{store: store, fallback: fallback}
}

func (p *positionProvider) GetCurrentPosition(ctx context.Context) (*models.Position, error) {
	pos, err := p.fromStore(ctx)
	if err == nil {
		return pos, nil
	}
	log.Printf("[position] fast store unavailable, using fallback: %v", err)

	pos, err = p.fallback.GetPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("fallback position: %w", err)
	}
	return pos, nil
}

func (p *positionProvider) fromStore(ctx context.Context) (*models.Position, error) {
	if p.store == nil {
		return nil, fmt.Errorf("%w: position store is not configured", apperr.ErrNotFound)
	}

	raw, err := p.store.ReadLatest(ctx)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: position value: %v", apperr.ErrDecode, err)
	}

	pos, err := utils.ParsePosition(doc)
	if err != nil {
		return nil, err
	}
	pos.Source = models.PositionFromRedis
	return pos, nil
}
