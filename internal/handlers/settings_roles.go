package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/services"
	"github.com/carehub/storefront/pkg/response"
)

type rolePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,dive,required"`
}

// GET /api/settings/roles
func (h *SettingsHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, roles, &response.Meta{Count: len(roles)})
}

// GET /api/settings/roles/:id
func (h *SettingsHandler) GetRole(c *gin.Context) {
	role, err := h.service.GetRole(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/settings/roles
func (h *SettingsHandler) CreateRole(c *gin.Context) {
	var body services.CreateRoleInput
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.service.CreateRole(requestContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Role created", role)
}

// PUT /api/settings/roles/:id
func (h *SettingsHandler) UpdateRole(c *gin.Context) {
	var body services.UpdateRoleInput
	if !bindAndValidate(c, &body) {
		return
	}
	role, err := h.service.UpdateRole(requestContext(c), c.Param("id"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Role updated", role)
}

// DELETE /api/settings/roles/:id
func (h *SettingsHandler) DeleteRole(c *gin.Context) {
	if err := h.service.DeleteRole(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Role deleted", gin.H{"id": c.Param("id")})
}

// GET /api/settings/roles/:id/permissions
func (h *SettingsHandler) GetRolePermissions(c *gin.Context) {
	perms, err := h.service.GetRolePermissions(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, perms, &response.Meta{Count: len(perms)})
}

// PUT /api/settings/roles/:id/permissions replaces the role's permission set.
func (h *SettingsHandler) UpdateRolePermissions(c *gin.Context) {
	var body rolePermissionsRequest
	if !bindAndValidate(c, &body) {
		return
	}
	perms, err := h.service.UpdateRolePermissions(requestContext(c), c.Param("id"), body.Permissions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Role permissions updated", perms)
}

// GET /api/settings/roles/permissions
func (h *SettingsHandler) ListPermissions(c *gin.Context) {
	perms, err := h.service.ListPermissions(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, perms, &response.Meta{Count: len(perms)})
}
