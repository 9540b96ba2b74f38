package models

import (
	"time"

	"gorm.io/datatypes"
)

// Backup triggers and states.
const (
	BackupTriggerManual    = "manual"
	BackupTriggerScheduled = "scheduled"

	BackupStatusCompleted = "completed"
	BackupStatusRestored  = "restored"
)

// Backup is a point-in-time JSON snapshot of the settings tables.
type Backup struct {
	BaseModel

	Name       string         `gorm:"not null" json:"name"`
	Note       string         `json:"note"`
	Trigger    string         `gorm:"not null;index" json:"trigger"`
	Status     string         `gorm:"not null" json:"status"`
	SizeBytes  int64          `json:"size_bytes"`
	Snapshot   datatypes.JSON `gorm:"not null" json:"-"`
	RestoredAt *time.Time     `json:"restored_at"`
}
