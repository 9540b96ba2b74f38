package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/handlers"
	"github.com/carehub/storefront/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, startedAt time.Time, probes *monitoring.HealthManager) {
	handler := handlers.NewHealthHandler(startedAt, probes)

	for _, group := range []gin.IRouter{r, r.Group("/api")} {
		group.GET("/health", handler.Health)
		group.GET("/health/live", handler.Health)
		group.GET("/health/ready", handler.Ready)
	}
}
