package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/clients"
	"cosmosfeed/internal/models"
	"cosmosfeed/internal/repository"
)

type FeedService interface {
	// FetchAndCache забирает один источник и кладет его в space_caches.
	FetchAndCache(ctx context.Context, source string) error
	// FetchDONKI забирает FLR и CME. Ошибка только если не удались оба.
	FetchDONKI(ctx context.Context) error
	// Refresh возвращает имена источников, которые удалось обновить.
	// Неизвестные имена пропускаются, пустой список означает все источники.
	Refresh(ctx context.Context, sources []string) []string
	// Latest принимает любое имя источника. Нет данных - apperr.ErrNotFound.
	Latest(ctx context.Context, source string) (*models.SpaceCache, error)
	// Summary не падает из-за отдельного источника: ошибка чтения дает
	// пустой объект для него и 0 для числа датасетов.
	Summary(ctx context.Context) (*Summary, error)
}

// CachedValue - последнее значение источника в ответах API.
type CachedValue struct {
	Source    string          `json:"source,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

type Summary struct {
	// Feeds: источник -> CachedValue или пустой объект, если данных еще нет.
	Feeds         map[string]interface{} `json:"feeds"`
	ISS           interface{}            `json:"iss"`
	Position      *models.Position       `json:"position"`
	PositionError string                 `json:"position_error,omitempty"`
	OSDRCount     int64                  `json:"osdr_count"`
}

type FeedConfig struct {
	NEODays   int
	DONKIDays int
}

type fetchFunc func(ctx context.Context) (interface{}, error)

type feedService struct {
	samples   repository.SpaceCacheRepository
	osdr      repository.OSDRRepository
	positions PositionProvider
	fetchers  map[string]fetchFunc
}

func NewFeedService(
	samples repository.SpaceCacheRepository,
	osdr repository.OSDRRepository,
	positions PositionProvider,
	nasa clients.NASAClient,
	spacex clients.SpaceXClient,
	config FeedConfig,
) FeedService {
	s := &feedService{
		samples:   samples,
		osdr:      osdr,
		positions: positions,
	}
	s.fetchers = map[string]fetchFunc{
		models.SourceAPOD: func(ctx context.Context) (interface{}, error) {
			return nasa.FetchAPOD(ctx, "")
		},
		models.SourceNEO: func(ctx context.Context) (interface{}, error) {
			return nasa.FetchNEOFeed(ctx, config.NEODays)
		},
		models.SourceFLR: func(ctx context.Context) (interface{}, error) {
			return nasa.FetchDONKI(ctx, clients.DONKIFlare, config.DONKIDays)
		},
		models.SourceCME: func(ctx context.Context) (interface{}, error) {
			return nasa.FetchDONKI(ctx, clients.DONKICME, config.DONKIDays)
		},
		models.SourceSpaceX: func(ctx context.Context) (interface{}, error) {
			return spacex.FetchNextLaunch(ctx)
		},
	}
	return s
}

func (s *feedService) FetchAndCache(ctx context.Context, source string) error {
	fetch, ok := s.fetchers[source]
	if !ok {
		return fmt.Errorf("%w: unknown feed source %q", apperr.ErrInvalidInput, source)
	}

	payload, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", source, err)
	}

	if _, err := s.samples.Write(ctx, source, payload); err != nil {
		return fmt.Errorf("failed to cache %s: %w", source, err)
	}
	return nil
}

func (s *feedService) FetchDONKI(ctx context.Context) error {
	flrErr := s.FetchAndCache(ctx, models.SourceFLR)
	if flrErr != nil {
		log.Printf("[donki] %v", flrErr)
	}
	cmeErr := s.FetchAndCache(ctx, models.SourceCME)
	if cmeErr != nil {
		log.Printf("[donki] %v", cmeErr)
	}

	if flrErr != nil && cmeErr != nil {
		return errors.Join(flrErr, cmeErr)
	}
	return nil
}

func (s *feedService) Refresh(ctx context.Context, sources []string) []string {
	if len(sources) == 0 {
		sources = models.FeedSources
	}

	done := make([]string, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		src = strings.ToLower(strings.TrimSpace(src))
		if seen[src] {
			continue
		}
		seen[src] = true

		if _, ok := s.fetchers[src]; !ok {
			continue
		}
		if err := s.FetchAndCache(ctx, src); err != nil {
			log.Printf("[refresh] %s: %v", src, err)
			continue
		}
		done = append(done, src)
	}
	return done
}

func (s *feedService) Latest(ctx context.Context, source string) (*models.SpaceCache, error) {
	return s.samples.Latest(ctx, source)
}

func (s *feedService) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{Feeds: make(map[string]interface{}, len(models.FeedSources))}

	for _, src := range models.FeedSources {
		summary.Feeds[src] = s.latestOrEmpty(ctx, src)
	}
	summary.ISS = s.latestOrEmpty(ctx, models.SourceISS)

	count, err := s.osdr.Count(ctx)
	if err != nil {
		log.Printf("[summary] failed to count OSDR items: %v", err)
		count = 0
	}
	summary.OSDRCount = count

	pos, err := s.positions.GetCurrentPosition(ctx)
	if err != nil {
		summary.PositionError = err.Error()
	} else {
		summary.Position = pos
	}

	return summary, nil
}

// latestOrEmpty: нет данных или ошибка чтения - пустой объект.
func (s *feedService) latestOrEmpty(ctx context.Context, source string) interface{} {
	row, err := s.samples.Latest(ctx, source)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Printf("[summary] failed to get latest %s: %v", source, err)
		}
		return struct{}{}
	}
	return ToCachedValue(row)
}

func ToCachedValue(row *models.SpaceCache) *CachedValue {
	return &CachedValue{
		Source:    row.Source,
		FetchedAt: row.FetchedAt,
		Payload:   json.RawMessage(row.Payload),
	}
}

func isKnownSource(source string) bool {
	if source == models.SourceISS {
		return true
	}
	for _, src := range models.FeedSources {
		if src == source {
			return true
		}
	}
	return false
}
