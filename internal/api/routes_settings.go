package api

import (
	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/handlers"
	"github.com/carehub/storefront/internal/services"
)

func registerSettingsRoutes(api *gin.RouterGroup, service *services.SettingsService) {
	if service == nil {
		return
	}
	handler := handlers.NewSettingsHandler(service)

	settings := api.Group("/settings")

	settings.GET("/general", handler.GetGeneral)
	settings.PUT("/general", handler.UpdateGeneral)

	users := settings.Group("/users")
	{
		users.GET("", handler.ListUsers)
		users.POST("", handler.CreateUser)
		users.GET("/:id", handler.GetUser)
		users.PUT("/:id", handler.UpdateUser)
		users.DELETE("/:id", handler.DeleteUser)
		users.PUT("/:id/status", handler.UpdateUserStatus)
		users.POST("/:id/reset-password", handler.ResetUserPassword)
	}

	roles := settings.Group("/roles")
	{
		roles.GET("", handler.ListRoles)
		roles.POST("", handler.CreateRole)
		roles.GET("/permissions", handler.ListPermissions)
		roles.GET("/:id", handler.GetRole)
		roles.PUT("/:id", handler.UpdateRole)
		roles.DELETE("/:id", handler.DeleteRole)
		roles.GET("/:id/permissions", handler.GetRolePermissions)
		roles.PUT("/:id/permissions", handler.UpdateRolePermissions)
	}

	system := settings.Group("/system")
	{
		system.GET("", handler.GetSystem)
		system.PUT("", handler.UpdateSystem)
		system.GET("/info", handler.GetSystemInfo)
		system.PUT("/maintenance", handler.SetMaintenanceMode)
		system.POST("/cache/clear", handler.ClearCache)
	}

	backups := settings.Group("/backups")
	{
		backups.GET("", handler.ListBackups)
		backups.POST("", handler.CreateBackup)
		backups.GET("/schedule", handler.GetBackupSchedule)
		backups.PUT("/schedule", handler.UpdateBackupSchedule)
		backups.POST("/:id/restore", handler.RestoreBackup)
		backups.DELETE("/:id", handler.DeleteBackup)
	}
}
