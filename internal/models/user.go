package models

import "time"

// User account states managed through the settings API.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User is a storefront back-office account.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Status   string `gorm:"default:active;index;not null" json:"status"`

	RoleID *string `gorm:"index" json:"role_id"`
	Role   *Role   `json:"role,omitempty"`

	MustChangePassword bool       `gorm:"default:false" json:"must_change_password"`
	PasswordChangedAt  *time.Time `json:"password_changed_at"`
	LastLoginAt        *time.Time `json:"last_login_at"`
}

// IsValidUserStatus reports whether status is a known account state.
func IsValidUserStatus(status string) bool {
	switch status {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}
