package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/services"
	"github.com/carehub/storefront/pkg/response"
)

type userStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

// GET /api/settings/users
func (h *SettingsHandler) ListUsers(c *gin.Context) {
	opts := services.ListUsersOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Query:    c.Query("q"),
		Status:   c.Query("status"),
		RoleID:   c.Query("role_id"),
	}

	users, total, err := h.service.ListUsers(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{Count: len(users), Total: int(total)})
}

// GET /api/settings/users/:id
func (h *SettingsHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/settings/users
func (h *SettingsHandler) CreateUser(c *gin.Context) {
	var body services.CreateUserInput
	if !bindAndValidate(c, &body) {
		return
	}
	user, err := h.service.CreateUser(requestContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "User created", user)
}

// PUT /api/settings/users/:id
func (h *SettingsHandler) UpdateUser(c *gin.Context) {
	var body services.UpdateUserInput
	if !bindAndValidate(c, &body) {
		return
	}
	user, err := h.service.UpdateUser(requestContext(c), c.Param("id"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "User updated", user)
}

// DELETE /api/settings/users/:id
func (h *SettingsHandler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "User deleted", gin.H{"id": c.Param("id")})
}

// PUT /api/settings/users/:id/status
func (h *SettingsHandler) UpdateUserStatus(c *gin.Context) {
	var body userStatusRequest
	if !bindAndValidate(c, &body) {
		return
	}
	user, err := h.service.UpdateUserStatus(requestContext(c), c.Param("id"), body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "User status updated", user)
}

// POST /api/settings/users/:id/reset-password
func (h *SettingsHandler) ResetUserPassword(c *gin.Context) {
	reset, err := h.service.ResetUserPassword(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Password reset", reset)
}
