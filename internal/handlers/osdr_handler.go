package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/service"
)

type OSDRHandler struct {
	service service.OSDRService
}

func NewOSDRHandler(service service.OSDRService) *OSDRHandler {
	return &OSDRHandler{service: service}
}

// GetOSDRList: без limit используется значение из конфигурации.
func (h *OSDRHandler) GetOSDRList(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 0 {
			respondError(c, fmt.Errorf("%w: limit must be a non-negative integer", apperr.ErrInvalidInput))
			return
		}
		limit = l
	}

	items, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *OSDRHandler) ForceSyncOSDR(c *gin.Context) {
	result, err := h.service.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
