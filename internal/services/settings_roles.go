package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/models"
	apperrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/validator"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrSystemRoleImmutable prevents renaming or deleting seeded roles.
	ErrSystemRoleImmutable = apperrors.New("ROLE_SYSTEM_IMMUTABLE", "System roles cannot be modified", http.StatusBadRequest)
	// ErrRoleInUse prevents deleting a role that users still hold.
	ErrRoleInUse = apperrors.New("ROLE_IN_USE", "Role is assigned to users", http.StatusConflict)
)

// CreateRoleInput describes a new role.
type CreateRoleInput struct {
	Name        string   `json:"name" validate:"required,notblank,max=64"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

// UpdateRoleInput enumerates mutable role attributes; nil fields are left unchanged.
type UpdateRoleInput struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=64"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// ListRoles returns every role with its permissions and user count.
func (s *SettingsService) ListRoles(ctx context.Context) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("settings service: list roles: %w", err)
	}

	type roleCount struct {
		RoleID string
		Count  int64
	}
	var counts []roleCount
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("role_id, COUNT(*) AS count").
		Where("role_id IS NOT NULL").
		Group("role_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("settings service: count role users: %w", err)
	}
	byRole := make(map[string]int64, len(counts))
	for _, c := range counts {
		byRole[c.RoleID] = c.Count
	}
	for i := range roles {
		roles[i].UserCount = byRole[roles[i].ID]
	}
	return roles, nil
}

// GetRole loads a role with its permissions and user count.
func (s *SettingsService) GetRole(ctx context.Context, id string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings service: get role: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("role_id = ?", id).Count(&role.UserCount).Error; err != nil {
		return nil, fmt.Errorf("settings service: count role users: %w", err)
	}
	return &role, nil
}

// CreateRole adds a custom role with the given permissions.
func (s *SettingsService) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	role := &models.Role{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms, err := loadPermissions(tx, input.Permissions)
		if err != nil {
			return err
		}
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		if len(perms) > 0 {
			return tx.Model(role).Association("Permissions").Replace(perms)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("create role", err, "role name already exists")
	}

	s.log.Info("role created", zap.String("role_id", role.ID), zap.String("name", role.Name))
	return s.GetRole(ctx, role.ID)
}

// UpdateRole renames or re-describes a custom role.
func (s *SettingsService) UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if v := trimmedPtr(input.Name); v != nil && *v != role.Name {
		if role.IsSystem {
			return nil, ErrSystemRoleImmutable
		}
		updates["name"] = *v
	}
	if v := trimmedPtr(input.Description); v != nil {
		updates["description"] = *v
	}
	if len(updates) == 0 {
		return role, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, storeError("update role", err, "role name already exists")
	}
	return s.GetRole(ctx, id)
}

// DeleteRole removes a custom role that no user holds.
func (s *SettingsService) DeleteRole(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	role, err := s.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRoleImmutable
	}
	if role.UserCount > 0 {
		return ErrRoleInUse
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("settings service: delete role: %w", err)
	}
	s.log.Info("role deleted", zap.String("role_id", id))
	return nil
}

// GetRolePermissions returns the permissions granted to a role.
func (s *SettingsService) GetRolePermissions(ctx context.Context, id string) ([]models.Permission, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.Permissions == nil {
		return []models.Permission{}, nil
	}
	return role.Permissions, nil
}

// UpdateRolePermissions replaces the permissions granted to a role. Unknown
// permission ids are rejected without changing anything.
func (s *SettingsService) UpdateRolePermissions(ctx context.Context, id string, permissionIDs []string) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms, err := loadPermissions(tx, permissionIDs)
		if err != nil {
			return err
		}
		if len(perms) == 0 {
			return tx.Model(role).Association("Permissions").Clear()
		}
		return tx.Model(role).Association("Permissions").Replace(perms)
	})
	if err != nil {
		return nil, storeError("update role permissions", err, "")
	}

	s.log.Info("role permissions updated", zap.String("role_id", id), zap.Int("count", len(permissionIDs)))
	return s.GetRolePermissions(ctx, id)
}

// ListPermissions returns the permission catalog ordered by module.
func (s *SettingsService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	var perms []models.Permission
	if err := s.db.WithContext(ctx).Order("module ASC, id ASC").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("settings service: list permissions: %w", err)
	}
	return perms, nil
}

func loadPermissions(tx *gorm.DB, ids []string) ([]models.Permission, error) {
	ids = normaliseIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var perms []models.Permission
	if err := tx.Where("id IN ?", ids).Find(&perms).Error; err != nil {
		return nil, err
	}
	if len(perms) != len(ids) {
		found := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			found[p.ID] = struct{}{}
		}
		var missing []string
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, apperrors.NewBadRequest("unknown permissions: " + strings.Join(missing, ", "))
	}
	return perms, nil
}
