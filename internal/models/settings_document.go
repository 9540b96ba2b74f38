package models

import (
	"time"

	"gorm.io/datatypes"
)

// Settings document keys.
const (
	SettingsGeneral        = "general"
	SettingsSystem         = "system"
	SettingsBackupSchedule = "backups.schedule"
)

// SettingsDocument stores one settings section as a JSON document.
type SettingsDocument struct {
	Key       string         `gorm:"primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
