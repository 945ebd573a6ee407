// Package app собирает зависимости сервиса из конфигурации.
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"cosmosfeed/internal/cache"
	"cosmosfeed/internal/clients"
	"cosmosfeed/internal/config"
	"cosmosfeed/internal/handlers"
	"cosmosfeed/internal/middleware"
	"cosmosfeed/internal/repository"
	"cosmosfeed/internal/service"
	"cosmosfeed/internal/utils"
	"cosmosfeed/internal/worker"
	"cosmosfeed/pkg/database"
	"cosmosfeed/pkg/redis"
)

// App держит собранные зависимости. После New не изменяется.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *goredis.Client
	Scheduler *worker.Scheduler
	Router    *gin.Engine
}

// New подключается к PostgreSQL и Redis. Без Redis сервис работает:
// позиция берется из запасного API.
func New(cfg *config.Config) (*App, error) {
	db, err := database.Connect(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
		Debug:    cfg.App.Debug,
	})
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}

	redisClient, err := redis.Connect(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("Redis unavailable, position reads will use the fallback API: %v", err)
		redisClient = nil
	}

	return Build(cfg, db, redisClient), nil
}

// Build собирает сервис поверх готовых соединений. redisClient может быть nil.
func Build(cfg *config.Config, db *gorm.DB, redisClient *goredis.Client) *App {
	httpCfg := clients.HTTPConfig{
		Timeout: cfg.HTTP.Timeout,
		Retry: clients.RetryPolicy{
			MaxRetries:      cfg.HTTP.MaxRetries,
			InitialInterval: cfg.HTTP.InitialInterval,
		},
	}

	// Клиенты
	issClient := clients.NewISSClient(cfg.ISS.URL, httpCfg)
	openNotify := clients.NewOpenNotifyClient(cfg.ISS.FallbackURL, httpCfg)
	nasaClient := clients.NewNASAClient(clients.NASAConfig{
		APIKey:   cfg.NASA.APIKey,
		OSDRURL:  cfg.NASA.OSDRURL,
		APODURL:  cfg.NASA.APODURL,
		NEOURL:   cfg.NASA.NEOURL,
		DONKIURL: cfg.NASA.DONKIURL,
		HTTP:     httpCfg,
	})
	spacexClient := clients.NewSpaceXClient(cfg.SpaceX.URL, httpCfg)

	// Хранилища
	samples := repository.NewSpaceCacheRepository(db)
	osdrRepo := repository.NewOSDRRepository(db, utils.DefaultDatasetFields())

	var store cache.PositionStore
	if redisClient != nil {
		store = cache.NewPositionStore(redisClient, cfg.Redis.PositionKey)
	}

	// Сервисы
	positions := service.NewPositionProvider(store, openNotify)
	trend := service.NewTrendCalculator(samples)
	issService := service.NewISSService(samples, issClient, positions, trend, store,
		service.ISSConfig{PositionTTL: cfg.Redis.PositionTTL})
	osdrService := service.NewOSDRService(osdrRepo, nasaClient, cfg.App.ListDefaultLimit)
	feedService := service.NewFeedService(samples, osdrRepo, positions, nasaClient, spacexClient,
		service.FeedConfig{NEODays: cfg.NASA.NEODays, DONKIDays: cfg.NASA.DONKIDays})
	exportService := service.NewExportService(samples, cfg.Export.OutputDir)

	// Фоновые циклы
	scheduler := worker.NewScheduler()
	worker.RegisterTasks(scheduler, cfg, issService, osdrService, feedService)

	h := &handlers.Handlers{
		ISS:    handlers.NewISSHandler(issService),
		OSDR:   handlers.NewOSDRHandler(osdrService),
		Space:  handlers.NewSpaceHandler(feedService, exportService),
		System: handlers.NewSystemHandler(samples, osdrService, redisClient, scheduler),
	}

	return &App{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Scheduler: scheduler,
		Router:    newRouter(cfg, h),
	}
}

func newRouter(cfg *config.Config, h *handlers.Handlers) *gin.Engine {
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if cfg.App.FrontendURL != "" && cfg.App.FrontendURL != origins[0] {
		origins = append(origins, cfg.App.FrontendURL)
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting (только для продакшена)
	if !cfg.App.Debug {
		limit := rate.Limit(cfg.RateLimit.RequestsPerSecond)
		if cfg.RateLimit.PerIP {
			r.Use(middleware.IPRateLimitMiddleware(middleware.NewIPRateLimiter(limit, cfg.RateLimit.Burst)))
		} else {
			r.Use(middleware.RateLimitMiddleware(rate.NewLimiter(limit, cfg.RateLimit.Burst)))
		}
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d, per IP: %v",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.PerIP)
	}

	h.Register(r)
	return r
}

// Close останавливает циклы и закрывает соединения.
func (a *App) Close() error {
	a.Scheduler.Stop()

	var firstErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
	}
	if err := closeDB(a.DB); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close database: %w", err)
	}
	return firstErr
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
