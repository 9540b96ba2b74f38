package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/services"
	"github.com/carehub/storefront/pkg/response"
)

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	service *services.SettingsService
}

// NewSettingsHandler constructs a handler over service.
func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// GET /api/settings/general
func (h *SettingsHandler) GetGeneral(c *gin.Context) {
	settings, err := h.service.GetGeneral(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// PUT /api/settings/general
func (h *SettingsHandler) UpdateGeneral(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	settings, err := h.service.UpdateGeneral(requestContext(c), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "General settings updated", settings)
}

// GET /api/settings/system
func (h *SettingsHandler) GetSystem(c *gin.Context) {
	settings, err := h.service.GetSystem(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// PUT /api/settings/system
func (h *SettingsHandler) UpdateSystem(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	settings, err := h.service.UpdateSystem(requestContext(c), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "System settings updated", settings)
}

// GET /api/settings/system/info
func (h *SettingsHandler) GetSystemInfo(c *gin.Context) {
	info, err := h.service.GetSystemInfo(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

type maintenanceRequest struct {
	Enabled *bool  `json:"enabled" validate:"required"`
	Message string `json:"message" validate:"max=500"`
}

// PUT /api/settings/system/maintenance
func (h *SettingsHandler) SetMaintenanceMode(c *gin.Context) {
	var body maintenanceRequest
	if !bindAndValidate(c, &body) {
		return
	}
	settings, err := h.service.SetMaintenanceMode(requestContext(c), *body.Enabled, strings.TrimSpace(body.Message))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Maintenance mode disabled"
	if settings.MaintenanceMode {
		message = "Maintenance mode enabled"
	}
	response.SuccessWithMessage(c, http.StatusOK, message, settings)
}

// POST /api/settings/system/cache/clear
func (h *SettingsHandler) ClearCache(c *gin.Context) {
	cleared, err := h.service.ClearCache(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Cache cleared", gin.H{"cleared": cleared})
}
