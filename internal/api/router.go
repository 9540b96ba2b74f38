package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carehub/storefront/internal/app"
	"github.com/carehub/storefront/internal/catalog"
	"github.com/carehub/storefront/internal/middleware"
	"github.com/carehub/storefront/internal/monitoring"
	"github.com/carehub/storefront/internal/realtime"
	"github.com/carehub/storefront/internal/services"
	"github.com/carehub/storefront/internal/toast"
)

// Dependencies are the long-lived components the routes serve.
type Dependencies struct {
	Catalog  catalog.Source
	Toasts   *toast.Queue
	Hub      *realtime.Hub
	Settings *services.SettingsService
	Health   *monitoring.HealthManager

	StartedAt time.Time
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
// Settings routes are only mounted when a settings service is provided.
func NewRouter(cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog source must be provided")
	}
	if deps.Toasts == nil {
		return nil, errors.New("toast queue must be provided")
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	if cfg.Monitoring.Prometheus.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.Errors())

	var probes *monitoring.HealthManager
	if cfg.Monitoring.Health.Enabled {
		probes = deps.Health
	}
	registerHealthRoutes(r, deps.StartedAt, probes)

	api := r.Group("/api")
	registerCatalogRoutes(api, deps.Catalog)
	registerToastRoutes(api, deps.Toasts, deps.Hub)
	registerSettingsRoutes(api, deps.Settings)
	registerRealtimeRoutes(r, deps)

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
