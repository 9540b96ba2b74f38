package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/models"
	"github.com/carehub/storefront/internal/services"
	"github.com/carehub/storefront/pkg/response"
)

// GET /api/settings/backups
func (h *SettingsHandler) ListBackups(c *gin.Context) {
	backups, err := h.service.ListBackups(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, backups, &response.Meta{Count: len(backups)})
}

// POST /api/settings/backups accepts an optional {name, note} body.
func (h *SettingsHandler) CreateBackup(c *gin.Context) {
	var body services.CreateBackupInput
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &body) {
		return
	}
	backup, err := h.service.CreateBackup(requestContext(c), body, models.BackupTriggerManual)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Backup created", backup)
}

// POST /api/settings/backups/:id/restore
func (h *SettingsHandler) RestoreBackup(c *gin.Context) {
	backup, err := h.service.RestoreBackup(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Backup restored", backup)
}

// DELETE /api/settings/backups/:id
func (h *SettingsHandler) DeleteBackup(c *gin.Context) {
	if err := h.service.DeleteBackup(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Backup deleted", gin.H{"id": c.Param("id")})
}

// GET /api/settings/backups/schedule
func (h *SettingsHandler) GetBackupSchedule(c *gin.Context) {
	schedule, err := h.service.GetBackupSchedule(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, schedule)
}

// PUT /api/settings/backups/schedule
func (h *SettingsHandler) UpdateBackupSchedule(c *gin.Context) {
	var body services.UpdateBackupScheduleInput
	if !bindAndValidate(c, &body) {
		return
	}
	schedule, err := h.service.UpdateBackupSchedule(requestContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Backup schedule updated", schedule)
}
