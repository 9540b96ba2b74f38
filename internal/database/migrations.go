package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/models"
	"github.com/carehub/storefront/pkg/crypto"
)

// Seeded role identifiers.
const (
	RoleAdmin      = "admin"
	RoleManager    = "store-manager"
	RolePharmacist = "pharmacist"
	RoleSupport    = "support"
)

// DefaultAdminUsername is the account created on an empty database.
const DefaultAdminUsername = "admin"

// defaultAdminPassword is only valid until the first password reset.
const defaultAdminPassword = "ChangeMe123!"

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.SettingsDocument{},
		&models.Backup{},
	)
}

// PermissionCatalog lists every permission a role may be granted.
func PermissionCatalog() []models.Permission {
	return []models.Permission{
		{ID: "dashboard.view", Module: "dashboard", Name: "View dashboard", Description: "See sales and traffic summaries"},
		{ID: "orders.view", Module: "orders", Name: "View orders"},
		{ID: "orders.manage", Module: "orders", Name: "Manage orders", Description: "Update, cancel and refund orders"},
		{ID: "products.view", Module: "products", Name: "View products"},
		{ID: "products.manage", Module: "products", Name: "Manage products", Description: "Edit catalog, prices and stock"},
		{ID: "prescriptions.view", Module: "prescriptions", Name: "View prescriptions"},
		{ID: "prescriptions.verify", Module: "prescriptions", Name: "Verify prescriptions", Description: "Approve or reject uploaded prescriptions"},
		{ID: "customers.view", Module: "customers", Name: "View customers"},
		{ID: "customers.manage", Module: "customers", Name: "Manage customers"},
		{ID: "settings.view", Module: "settings", Name: "View settings"},
		{ID: "settings.manage", Module: "settings", Name: "Manage settings", Description: "Change store, user and role settings"},
		{ID: "backups.manage", Module: "settings", Name: "Manage backups", Description: "Create, restore and schedule backups"},
	}
}

type seedRole struct {
	role        models.Role
	permissions []string
}

func seedRoles() []seedRole {
	all := make([]string, 0)
	for _, p := range PermissionCatalog() {
		all = append(all, p.ID)
	}

	return []seedRole{
		{
			role:        models.Role{BaseModel: models.BaseModel{ID: RoleAdmin}, Name: "Administrator", Description: "Full back-office access", IsSystem: true},
			permissions: all,
		},
		{
			role: models.Role{BaseModel: models.BaseModel{ID: RoleManager}, Name: "Store manager", Description: "Runs day-to-day store operations", IsSystem: true},
			permissions: []string{
				"dashboard.view", "orders.view", "orders.manage", "products.view", "products.manage",
				"customers.view", "customers.manage", "settings.view",
			},
		},
		{
			role: models.Role{BaseModel: models.BaseModel{ID: RolePharmacist}, Name: "Pharmacist", Description: "Reviews prescriptions", IsSystem: true},
			permissions: []string{
				"dashboard.view", "orders.view", "products.view", "prescriptions.view", "prescriptions.verify",
			},
		},
		{
			role:        models.Role{BaseModel: models.BaseModel{ID: RoleSupport}, Name: "Customer support", Description: "Answers customer enquiries", IsSystem: true},
			permissions: []string{"dashboard.view", "orders.view", "customers.view"},
		},
	}
}

// SeedData populates permissions, system roles and the bootstrap admin. It is
// idempotent.
func SeedData(db *gorm.DB) error {
	for _, perm := range PermissionCatalog() {
		if err := db.Where(models.Permission{ID: perm.ID}).Attrs(perm).FirstOrCreate(&models.Permission{}).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", perm.ID, err)
		}
	}

	for _, seed := range seedRoles() {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: seed.role.ID}}).Attrs(seed.role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", seed.role.ID, err)
		}
		if err := grantMissing(db, seed.role.ID, seed.permissions); err != nil {
			return fmt.Errorf("seed role %s permissions: %w", seed.role.ID, err)
		}
	}

	return seedAdmin(db)
}

// grantMissing attaches the seeded permissions a role lacks. Grants are only
// ever added so upgrades extend system roles without touching existing rows.
func grantMissing(db *gorm.DB, roleID string, permissionIDs []string) error {
	role := models.Role{BaseModel: models.BaseModel{ID: roleID}}

	var held []models.Permission
	if err := db.Model(&role).Association("Permissions").Find(&held); err != nil {
		return err
	}
	have := make(map[string]bool, len(held))
	for _, perm := range held {
		have[perm.ID] = true
	}

	var wanted []string
	for _, id := range permissionIDs {
		if !have[id] {
			wanted = append(wanted, id)
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var missing []models.Permission
	if err := db.Where("id IN ?", wanted).Find(&missing).Error; err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	return db.Model(&role).Association("Permissions").Append(missing)
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword(defaultAdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}

	roleID := RoleAdmin
	admin := models.User{
		Username:           DefaultAdminUsername,
		Email:              "admin@storefront.local",
		Password:           hashed,
		FullName:           "Store Administrator",
		Status:             models.UserStatusActive,
		RoleID:             &roleID,
		MustChangePassword: true,
	}
	return db.Create(&admin).Error
}
