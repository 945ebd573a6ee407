package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"

	"cosmosfeed/internal/models"
	"cosmosfeed/internal/repository"
	"cosmosfeed/internal/service"
	"cosmosfeed/pkg/redis"
)

// WorkerRegistry отдает имена циклов и состояние планировщика.
type WorkerRegistry interface {
	Names() []string
	IsRunning() bool
}

type SystemHandler struct {
	samples repository.SpaceCacheRepository
	osdr    service.OSDRService
	redis   *goredis.Client
	workers WorkerRegistry
}

// NewSystemHandler: redisClient может быть nil, тогда Redis считается недоступным.
func NewSystemHandler(
	samples repository.SpaceCacheRepository,
	osdr service.OSDRService,
	redisClient *goredis.Client,
	workers WorkerRegistry,
) *SystemHandler {
	return &SystemHandler{
		samples: samples,
		osdr:    osdr,
		redis:   redisClient,
		workers: workers,
	}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"redis":     h.redisState(c.Request.Context()),
			"scheduler": h.workers.IsRunning(),
		},
	})
}

func (h *SystemHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	counts := make(map[string]int64, len(models.FeedSources)+1)
	for _, src := range append([]string{models.SourceISS}, models.FeedSources...) {
		n, err := h.samples.Count(ctx, src)
		if err != nil {
			respondError(c, err)
			return
		}
		counts[src] = n
	}

	osdrCount, err := h.osdr.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	redisStats := map[string]string{"status": "unavailable"}
	if h.redis != nil {
		if stats, err := redis.GetStats(ctx, h.redis); err == nil {
			redisStats = stats
		}
	}

	respondOK(c, gin.H{
		"database": gin.H{
			"space_cache": counts,
			"osdr_items":  osdrCount,
		},
		"redis": redisStats,
		"workers": gin.H{
			"running": h.workers.IsRunning(),
			"names":   h.workers.Names(),
		},
	})
}

func (h *SystemHandler) redisState(ctx context.Context) string {
	if h.redis == nil {
		return "unavailable"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return "unavailable"
	}
	return "connected"
}
