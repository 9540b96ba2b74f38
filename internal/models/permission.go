package models

// Permission is a named capability such as "orders.view". Permissions are
// seeded, never created through the API.
type Permission struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Module      string `gorm:"not null;index" json:"module"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"-"`
}
