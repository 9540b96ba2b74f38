package api

import (
	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/handlers"
	"github.com/carehub/storefront/internal/realtime"
	"github.com/carehub/storefront/internal/toast"
)

func registerToastRoutes(api *gin.RouterGroup, queue *toast.Queue, hub *realtime.Hub) {
	handler := handlers.NewToastHandler(queue, hub)

	toasts := api.Group("/toasts")
	{
		toasts.GET("", handler.List)
		toasts.POST("", handler.Create)
		toasts.DELETE("", handler.Clear)
		toasts.GET("/stream", handler.Stream)
		toasts.DELETE("/:id", handler.Dismiss)
	}
}
