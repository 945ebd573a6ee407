package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/service"
)

type SpaceHandler struct {
	feeds  service.FeedService
	export service.ExportService
}

func NewSpaceHandler(feeds service.FeedService, export service.ExportService) *SpaceHandler {
	return &SpaceHandler{feeds: feeds, export: export}
}

// GetLatest: источник без данных - не ошибка, а {"source", "message": "no data"}.
func (h *SpaceHandler) GetLatest(c *gin.Context) {
	src := strings.ToLower(c.Param("src"))

	row, err := h.feeds.Latest(c.Request.Context(), src)
	if errors.Is(err, apperr.ErrNotFound) {
		respondOK(c, gin.H{"source": src, "message": "no data"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, service.ToCachedValue(row))
}

// Refresh: ?src=apod,neo. Без src обновляются все источники.
func (h *SpaceHandler) Refresh(c *gin.Context) {
	var sources []string
	for _, src := range strings.Split(c.Query("src"), ",") {
		if src = strings.TrimSpace(src); src != "" {
			sources = append(sources, src)
		}
	}

	refreshed := h.feeds.Refresh(c.Request.Context(), sources)
	respondOK(c, gin.H{"refreshed": refreshed})
}

func (h *SpaceHandler) GetSummary(c *gin.Context) {
	summary, err := h.feeds.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

// Export отдает файл: ?format=csv|xlsx|json&from=2024-01-01&to=2024-01-02.
// Дата без времени в to означает конец этого дня.
func (h *SpaceHandler) Export(c *gin.Context) {
	from, err := parseBound(c.Query("from"), false)
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := parseBound(c.Query("to"), true)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.export.Export(c.Request.Context(),
		strings.ToLower(c.Param("src")), c.DefaultQuery("format", service.ExportCSV), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.FileAttachment(result.Path, result.Filename)
}

func parseBound(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", apperr.ErrInvalidInput, value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
