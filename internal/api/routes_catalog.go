package api

import (
	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/catalog"
	"github.com/carehub/storefront/internal/handlers"
)

func registerCatalogRoutes(api *gin.RouterGroup, source catalog.Source) {
	handler := handlers.NewCatalogHandler(source)

	banners := api.Group("/banners")
	{
		banners.GET("", handler.ListBanners)
		banners.GET("/:id", handler.GetBanner)
	}

	menus := api.Group("/menus")
	{
		menus.GET("/services", handler.ServiceMenu)
		menus.GET("/emergency", handler.EmergencyMenu)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", handler.ListCategories)
		categories.GET("/:slug", handler.GetCategory)
	}
}
