package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/database"
	"github.com/carehub/storefront/internal/models"
	"github.com/carehub/storefront/pkg/crypto"
	apperrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/validator"
)

const temporaryPasswordLength = 12

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrLastAdministrator protects the only active administrator from removal.
	ErrLastAdministrator = apperrors.New("LAST_ADMINISTRATOR", "At least one active administrator is required", http.StatusConflict)
)

// CreateUserInput describes the fields accepted when creating a user.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,notblank,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"full_name" validate:"max=120"`
	Phone    string `json:"phone" validate:"max=40,phone"`
	RoleID   string `json:"role_id" validate:"max=64"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

// UpdateUserInput enumerates mutable user attributes; nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,notblank,min=3,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=40,phone"`
	RoleID   *string `json:"role_id" validate:"omitempty,max=64"`
}

// ListUsersOptions controls filtering and pagination for user listing.
type ListUsersOptions struct {
	Page     int
	PageSize int
	Query    string
	Status   string
	RoleID   string
}

// PasswordReset is the result of ResetUserPassword.
type PasswordReset struct {
	UserID            string `json:"user_id"`
	TemporaryPassword string `json:"temporary_password"`
}

// ListUsers returns users matching opts and the total before pagination.
func (s *SettingsService) ListUsers(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.User{})
	if status := strings.TrimSpace(opts.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if roleID := strings.TrimSpace(opts.RoleID); roleID != "" {
		query = query.Where("role_id = ?", roleID)
	}
	if q := strings.ToLower(strings.TrimSpace(opts.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("settings service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Preload("Role").
		Order("created_at ASC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("settings service: list users: %w", err)
	}
	return users, total, nil
}

// GetUser loads a user with its role.
func (s *SettingsService) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings service: get user: %w", err)
	}
	return &user, nil
}

// CreateUser provisions a user with a bcrypt-hashed password.
func (s *SettingsService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("settings service: hash password: %w", err)
	}

	status := input.Status
	if status == "" {
		status = models.UserStatusActive
	}

	user := &models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashed,
		FullName: strings.TrimSpace(input.FullName),
		Phone:    strings.TrimSpace(input.Phone),
		Status:   status,
	}

	if roleID := strings.TrimSpace(input.RoleID); roleID != "" {
		if err := s.requireRole(ctx, roleID); err != nil {
			return nil, err
		}
		user.RoleID = &roleID
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, storeError("create user", err, "username or email already exists")
	}

	s.log.Info("user created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return s.GetUser(ctx, user.ID)
}

// UpdateUser applies the non-nil fields of input.
func (s *SettingsService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if v := trimmedPtr(input.Username); v != nil {
		updates["username"] = *v
	}
	if v := trimmedPtr(input.Email); v != nil {
		updates["email"] = strings.ToLower(*v)
	}
	if v := trimmedPtr(input.FullName); v != nil {
		updates["full_name"] = *v
	}
	if v := trimmedPtr(input.Phone); v != nil {
		updates["phone"] = *v
	}
	if v := trimmedPtr(input.RoleID); v != nil {
		if *v == "" {
			updates["role_id"] = nil
		} else {
			if err := s.requireRole(ctx, *v); err != nil {
				return nil, err
			}
			updates["role_id"] = *v
		}
		if isActiveAdmin(user) && *v != database.RoleAdmin {
			if err := s.ensureOtherAdmin(ctx, user.ID); err != nil {
				return nil, err
			}
		}
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, storeError("update user", err, "username or email already exists")
	}

	return s.GetUser(ctx, id)
}

// DeleteUser removes a user. The last active administrator cannot be deleted.
func (s *SettingsService) DeleteUser(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if isActiveAdmin(user) {
		if err := s.ensureOtherAdmin(ctx, user.ID); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("settings service: delete user: %w", err)
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

// UpdateUserStatus sets the account state to active, inactive or suspended.
func (s *SettingsService) UpdateUserStatus(ctx context.Context, id, status string) (*models.User, error) {
	ctx = ensureContext(ctx)

	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidUserStatus(status) {
		return nil, apperrors.NewBadRequest("status must be one of active, inactive, suspended")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}
	if isActiveAdmin(user) {
		if err := s.ensureOtherAdmin(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("settings service: update user status: %w", err)
	}
	s.log.Info("user status changed", zap.String("user_id", id), zap.String("status", status))
	return s.GetUser(ctx, id)
}

// ResetUserPassword replaces the password with a random temporary one that
// must be changed on next login. The plaintext is returned once.
func (s *SettingsService) ResetUserPassword(ctx context.Context, id string) (PasswordReset, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return PasswordReset{}, err
	}

	temporary, err := crypto.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return PasswordReset{}, fmt.Errorf("settings service: generate password: %w", err)
	}
	hashed, err := crypto.HashPassword(temporary)
	if err != nil {
		return PasswordReset{}, fmt.Errorf("settings service: hash password: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"password":             hashed,
		"must_change_password": true,
		"password_changed_at":  now,
	}).Error; err != nil {
		return PasswordReset{}, fmt.Errorf("settings service: reset password: %w", err)
	}

	s.log.Info("user password reset", zap.String("user_id", id))
	return PasswordReset{UserID: user.ID, TemporaryPassword: temporary}, nil
}

func isActiveAdmin(user *models.User) bool {
	return user.Status == models.UserStatusActive && user.RoleID != nil && *user.RoleID == database.RoleAdmin
}

func (s *SettingsService) ensureOtherAdmin(ctx context.Context, excludeID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role_id = ? AND status = ? AND id <> ?", database.RoleAdmin, models.UserStatusActive, excludeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("settings service: count administrators: %w", err)
	}
	if count == 0 {
		return ErrLastAdministrator
	}
	return nil
}

func (s *SettingsService) requireRole(ctx context.Context, roleID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return fmt.Errorf("settings service: check role: %w", err)
	}
	if count == 0 {
		return apperrors.NewBadRequest(fmt.Sprintf("role %q does not exist", roleID))
	}
	return nil
}
