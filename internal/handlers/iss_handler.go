package handlers

import (
	"github.com/gin-gonic/gin"

	"cosmosfeed/internal/service"
)

type ISSHandler struct {
	service service.ISSService
}

func NewISSHandler(service service.ISSService) *ISSHandler {
	return &ISSHandler{service: service}
}

// GetLastISS - последний сырой сэмпл. Если сэмплов нет, data - пустой объект.
func (h *ISSHandler) GetLastISS(c *gin.Context) {
	row, err := h.service.GetLastSample(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if row == nil {
		respondOK(c, struct{}{})
		return
	}
	respondOK(c, service.ToCachedValue(row))
}

func (h *ISSHandler) GetPosition(c *gin.Context) {
	pos, err := h.service.GetCurrentPosition(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, pos)
}

func (h *ISSHandler) GetISSTrend(c *gin.Context) {
	trend, err := h.service.GetTrend(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, trend)
}

func (h *ISSHandler) ForceFetchISS(c *gin.Context) {
	row, err := h.service.FetchAndStore(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, service.ToCachedValue(row))
}
