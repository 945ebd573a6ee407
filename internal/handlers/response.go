package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cosmosfeed/internal/apperr"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": data,
	})
}

// respondError отдает ошибку в едином формате. trace_id попадает
// в лог, чтобы ответ можно было найти по нему.
func respondError(c *gin.Context, err error) {
	traceID := uuid.NewString()
	status := apperr.HTTPStatus(err)
	code := apperr.Code(err)

	log.Printf("[api] %s %s -> %d %s trace=%s: %v",
		c.Request.Method, c.Request.URL.Path, status, code, traceID, err)

	c.AbortWithStatusJSON(status, gin.H{
		"ok": false,
		"error": gin.H{
			"code":     code,
			"message":  err.Error(),
			"trace_id": traceID,
		},
	})
}
