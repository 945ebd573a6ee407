package worker

import (
	"context"
	"log"

	"cosmosfeed/internal/config"
	"cosmosfeed/internal/models"
	"cosmosfeed/internal/service"
)

// RegisterTasks регистрирует циклы источников согласно конфигурации.
func RegisterTasks(
	s *Scheduler,
	cfg *config.Config,
	iss service.ISSService,
	osdr service.OSDRService,
	feeds service.FeedService,
) {
	w := cfg.Workers

	if w.ISSEnabled {
		s.Register(models.SourceISS, w.ISSInterval, ISSTask(iss))
		log.Printf("ISS worker enabled (interval: %v)", w.ISSInterval)
	}

	if w.OSDREnabled {
		s.Register("osdr", w.OSDRInterval, OSDRTask(osdr))
		log.Printf("OSDR worker enabled (interval: %v)", w.OSDRInterval)
	}

	if w.FeedsEnabled {
		s.Register(models.SourceAPOD, w.APODInterval, FeedTask(feeds, models.SourceAPOD))
		s.Register(models.SourceNEO, w.NEOInterval, FeedTask(feeds, models.SourceNEO))
		s.Register("donki", w.DONKIInterval, feeds.FetchDONKI)
		s.Register(models.SourceSpaceX, w.SpaceXInterval, FeedTask(feeds, models.SourceSpaceX))
		log.Printf("Feed workers enabled (apod %v, neo %v, donki %v, spacex %v)",
			w.APODInterval, w.NEOInterval, w.DONKIInterval, w.SpaceXInterval)
	}
}

func ISSTask(iss service.ISSService) Task {
	return func(ctx context.Context) error {
		_, err := iss.FetchAndStore(ctx)
		return err
	}
}

func OSDRTask(osdr service.OSDRService) Task {
	return func(ctx context.Context) error {
		_, err := osdr.Sync(ctx)
		return err
	}
}

func FeedTask(feeds service.FeedService, source string) Task {
	return func(ctx context.Context) error {
		return feeds.FetchAndCache(ctx, source)
	}
}
