package handlers

import "github.com/gin-gonic/gin"

type Handlers struct {
	ISS    *ISSHandler
	OSDR   *OSDRHandler
	Space  *SpaceHandler
	System *SystemHandler
}

// Register вешает маршруты API на r.
func (h *Handlers) Register(r *gin.Engine) {
	r.GET("/health", h.System.Health)

	api := r.Group("/api/v1")

	api.GET("/health", h.System.Health)
	api.GET("/system/stats", h.System.Stats)

	api.GET("/iss/last", h.ISS.GetLastISS)
	api.GET("/iss/position", h.ISS.GetPosition)
	api.GET("/iss/trend", h.ISS.GetISSTrend)
	api.POST("/iss/fetch", h.ISS.ForceFetchISS)

	api.GET("/osdr/list", h.OSDR.GetOSDRList)
	api.POST("/osdr/sync", h.OSDR.ForceSyncOSDR)

	api.GET("/space/summary", h.Space.GetSummary)
	api.POST("/space/refresh", h.Space.Refresh)
	api.GET("/space/:src/latest", h.Space.GetLatest)
	api.GET("/space/:src/export", h.Space.Export)
}
