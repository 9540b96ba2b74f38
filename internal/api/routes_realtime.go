package api

import (
	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/handlers"
	"github.com/carehub/storefront/internal/realtime"
)

func registerRealtimeRoutes(r *gin.Engine, deps Dependencies) {
	if deps.Hub == nil {
		return
	}

	snapshot := func(stream string) (realtime.Message, bool) {
		switch stream {
		case realtime.StreamToasts:
			return realtime.ToastSnapshot(deps.Toasts.List()), true
		case realtime.StreamCatalog:
			return realtime.CatalogMessage(deps.Catalog.Name(), deps.Catalog.Fixtures()), true
		}
		return realtime.Message{}, false
	}

	handler := handlers.NewRealtimeHandler(deps.Hub, snapshot)
	r.GET("/ws", handler.Stream)
}
