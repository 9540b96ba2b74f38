package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carehub/storefront/internal/models"
	apperrors "github.com/carehub/storefront/pkg/errors"
)

// GeneralSettings describes the storefront identity shown to customers.
type GeneralSettings struct {
	StoreName             string  `json:"store_name" validate:"required,notblank,max=120"`
	Tagline               string  `json:"tagline" validate:"max=200"`
	SupportEmail          string  `json:"support_email" validate:"omitempty,email"`
	SupportPhone          string  `json:"support_phone" validate:"max=40,phone"`
	Currency              string  `json:"currency" validate:"required,len=3,uppercase"`
	Timezone              string  `json:"timezone" validate:"required,timezone"`
	Locale                string  `json:"locale" validate:"required,bcp47_language_tag"`
	LogoURL               string  `json:"logo_url" validate:"omitempty,url"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold" validate:"gte=0"`
}

// DefaultGeneralSettings returns the values served before anything is saved.
func DefaultGeneralSettings() GeneralSettings {
	return GeneralSettings{
		StoreName:             "CareHub Pharmacy",
		Tagline:               "Your health, delivered",
		SupportEmail:          "support@carehub.example",
		SupportPhone:          "1-800-555-0100",
		Currency:              "USD",
		Timezone:              "UTC",
		Locale:                "en-US",
		FreeShippingThreshold: 25,
	}
}

// SystemSettings holds operational switches.
type SystemSettings struct {
	MaintenanceMode           bool   `json:"maintenance_mode"`
	MaintenanceMessage        string `json:"maintenance_message" validate:"max=500"`
	SessionTimeoutMinutes     int    `json:"session_timeout_minutes" validate:"gte=5,lte=1440"`
	MaxUploadSizeMB           int    `json:"max_upload_size_mb" validate:"gte=1,lte=100"`
	PrescriptionUploadEnabled bool   `json:"prescription_upload_enabled"`
	LowStockThreshold         int    `json:"low_stock_threshold" validate:"gte=0"`
}

// DefaultSystemSettings returns the values served before anything is saved.
func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		SessionTimeoutMinutes:     30,
		MaxUploadSizeMB:           10,
		PrescriptionUploadEnabled: true,
		LowStockThreshold:         10,
	}
}

// SystemInfo reports runtime facts about the running server.
type SystemInfo struct {
	Version         string    `json:"version"`
	GoVersion       string    `json:"go_version"`
	OS              string    `json:"os"`
	Arch            string    `json:"arch"`
	Database        string    `json:"database"`
	StartedAt       time.Time `json:"started_at"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
	Goroutines      int       `json:"goroutines"`
	MemoryAllocMB   float64   `json:"memory_alloc_mb"`
	MaintenanceMode bool      `json:"maintenance_mode"`
	Users           int64     `json:"users"`
	Roles           int64     `json:"roles"`
	Backups         int64     `json:"backups"`
}

// GetGeneral returns the general settings.
func (s *SettingsService) GetGeneral(ctx context.Context) (GeneralSettings, error) {
	ctx = ensureContext(ctx)
	var out GeneralSettings
	err := s.loadDocument(ctx, models.SettingsGeneral, &out, func() any { return DefaultGeneralSettings() })
	return out, err
}

// UpdateGeneral applies a partial update to the general settings.
func (s *SettingsService) UpdateGeneral(ctx context.Context, patch map[string]any) (GeneralSettings, error) {
	ctx = ensureContext(ctx)

	current, err := s.GetGeneral(ctx)
	if err != nil {
		return GeneralSettings{}, err
	}

	var next GeneralSettings
	if err := applyPatch(current, patch, &next); err != nil {
		return GeneralSettings{}, err
	}
	next.StoreName = strings.TrimSpace(next.StoreName)

	if err := s.storeDocument(ctx, models.SettingsGeneral, next); err != nil {
		return GeneralSettings{}, err
	}
	s.log.Info("general settings updated", zap.Int("fields", len(patch)))
	return next, nil
}

// GetSystem returns the system settings.
func (s *SettingsService) GetSystem(ctx context.Context) (SystemSettings, error) {
	ctx = ensureContext(ctx)
	var out SystemSettings
	err := s.loadDocument(ctx, models.SettingsSystem, &out, func() any { return DefaultSystemSettings() })
	return out, err
}

// UpdateSystem applies a partial update to the system settings.
func (s *SettingsService) UpdateSystem(ctx context.Context, patch map[string]any) (SystemSettings, error) {
	ctx = ensureContext(ctx)

	current, err := s.GetSystem(ctx)
	if err != nil {
		return SystemSettings{}, err
	}

	var next SystemSettings
	if err := applyPatch(current, patch, &next); err != nil {
		return SystemSettings{}, err
	}

	if err := s.storeDocument(ctx, models.SettingsSystem, next); err != nil {
		return SystemSettings{}, err
	}
	s.log.Info("system settings updated", zap.Int("fields", len(patch)))
	return next, nil
}

// SetMaintenanceMode toggles maintenance mode. An empty message keeps the current one.
func (s *SettingsService) SetMaintenanceMode(ctx context.Context, enabled bool, message string) (SystemSettings, error) {
	patch := map[string]any{"maintenance_mode": enabled}
	if message = strings.TrimSpace(message); message != "" {
		patch["maintenance_message"] = message
	}

	settings, err := s.UpdateSystem(ctx, patch)
	if err != nil {
		return SystemSettings{}, err
	}
	s.log.Warn("maintenance mode changed", zap.Bool("enabled", enabled))
	return settings, nil
}

// GetSystemInfo reports version, runtime and record counts.
func (s *SettingsService) GetSystemInfo(ctx context.Context) (SystemInfo, error) {
	ctx = ensureContext(ctx)

	system, err := s.GetSystem(ctx)
	if err != nil {
		return SystemInfo{}, err
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := s.now()
	info := SystemInfo{
		Version:         s.version,
		GoVersion:       runtime.Version(),
		OS:              runtime.GOOS,
		Arch:            runtime.GOARCH,
		Database:        s.db.Dialector.Name(),
		StartedAt:       s.startedAt.UTC(),
		UptimeSeconds:   int64(now.Sub(s.startedAt).Seconds()),
		Goroutines:      runtime.NumGoroutine(),
		MemoryAllocMB:   float64(mem.Alloc) / (1 << 20),
		MaintenanceMode: system.MaintenanceMode,
	}

	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.User{}, &info.Users},
		{&models.Role{}, &info.Roles},
		{&models.Backup{}, &info.Backups},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return SystemInfo{}, fmt.Errorf("settings service: count records: %w", err)
		}
	}
	return info, nil
}

// ClearCache drops every cached settings document and reports how many were removed.
func (s *SettingsService) ClearCache(ctx context.Context) (int, error) {
	removed, err := s.cache.Flush(ensureContext(ctx))
	if err != nil {
		return 0, apperrors.ErrServiceUnavailable.WithInternal(err)
	}
	s.log.Info("settings cache cleared", zap.Int("entries", removed))
	return removed, nil
}
