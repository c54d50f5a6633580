package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/pipeline"
	"github.com/use-agent/founderscope/store"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// The service is "healthy" with a live session and "degraded" when it only
// serves stored data.
func Health(st *store.Store, sc *pipeline.Scraper, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, session := "healthy", "live"
		if sc == nil {
			status, session = "degraded", "offline"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Companies: st.Len(),
			Session:   session,
			Version:   Version,
		})
	}
}
