package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/cache"
	"cosmosfeed/internal/clients"
	"cosmosfeed/internal/models"
	"cosmosfeed/internal/repository"
	"cosmosfeed/internal/utils"
)

type ISSService interface {
	FetchAndStore(ctx context.Context) (*models.SpaceCache, error)
	GetLastSample(ctx context.Context) (*models.SpaceCache, error)
	GetCurrentPosition(ctx context.Context) (*models.Position, error)
	GetTrend(ctx context.Context) (*models.ISSTrend, error)
}

type issService struct {
	samples   repository.SpaceCacheRepository
	client    clients.ISSClient
	positions PositionProvider
	trend     TrendCalculator
	store     cache.PositionStore
	storeTTL  time.Duration
}

type ISSConfig struct {
	// PositionTTL - время жизни позиции, опубликованной в Redis.
	PositionTTL time.Duration
}

func NewISSService(
	samples repository.SpaceCacheRepository,
	client clients.ISSClient,
	positions PositionProvider,
	trend TrendCalculator,
	store cache.PositionStore,
	config ISSConfig,
) ISSService {
	return &issService{
		samples:   samples,
		client:    client,
		positions: positions,
		trend:     trend,
		store:     store,
		storeTTL:  config.PositionTTL,
	}
}

// FetchAndStore забирает сэмпл из основного API, пишет его в лог
// и публикует позицию в Redis.
func (s *issService) FetchAndStore(ctx context.Context) (*models.SpaceCache, error) {
	data, err := s.client.GetCurrentPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ISS data: %w", err)
	}

	row, err := s.samples.Write(ctx, models.SourceISS, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save ISS data: %w", err)
	}

	s.publish(ctx, data)
	return row, nil
}

// publish не влияет на результат: Redis здесь только ускоритель чтения.
func (s *issService) publish(ctx context.Context, data models.Document) {
	if s.store == nil {
		return
	}
	pos, err := utils.ParsePosition(data)
	if err != nil {
		log.Printf("[iss] sample has no position to publish: %v", err)
		return
	}
	pos.Source = models.PositionFromRedis
	if err := s.store.SaveLatest(ctx, pos, s.storeTTL); err != nil {
		log.Printf("[iss] failed to publish position: %v", err)
	}
}

func (s *issService) GetLastSample(ctx context.Context) (*models.SpaceCache, error) {
	row, err := s.samples.Latest(ctx, models.SourceISS)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last ISS sample: %w", err)
	}
	return row, nil
}

func (s *issService) GetCurrentPosition(ctx context.Context) (*models.Position, error) {
	return s.positions.GetCurrentPosition(ctx)
}

func (s *issService) GetTrend(ctx context.Context) (*models.ISSTrend, error) {
	return s.trend.ComputeTrend(ctx)
}
