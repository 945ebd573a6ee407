package service

import (
	"context"
	"fmt"
	"log"

	"cosmosfeed/internal/clients"
	"cosmosfeed/internal/models"
	"cosmosfeed/internal/repository"
)

const maxListLimit = 500

type OSDRService interface {
	Sync(ctx context.Context) (*SyncResult, error)
	List(ctx context.Context, limit int) ([]models.OSDRItem, error)
	Count(ctx context.Context) (int64, error)
}

// SyncResult: Processed - сколько документов пришло, Inserted - сколько новых строк.
type SyncResult struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
}

type osdrService struct {
	repo         repository.OSDRRepository
	client       clients.NASAClient
	defaultLimit int
}

func NewOSDRService(repo repository.OSDRRepository, client clients.NASAClient, defaultLimit int) OSDRService {
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	return &osdrService{
		repo:         repo,
		client:       client,
		defaultLimit: defaultLimit,
	}
}

func (s *osdrService) Sync(ctx context.Context) (*SyncResult, error) {
	docs, err := s.client.FetchOSDR(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OSDR data: %w", err)
	}

	inserted, err := s.repo.UpsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to save OSDR data: %w", err)
	}

	log.Printf("[osdr] synced %d documents, %d new", len(docs), inserted)
	return &SyncResult{Processed: len(docs), Inserted: inserted}, nil
}

// List: limit <= 0 заменяется значением из конфигурации.
func (s *osdrService) List(ctx context.Context, limit int) ([]models.OSDRItem, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *osdrService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
