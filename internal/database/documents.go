package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/models"
)

// ErrDocumentNotFound is returned when no settings document exists for a key.
var ErrDocumentNotFound = errors.New("settings document not found")

// GetDocument decodes the settings document stored under key into dest.
func GetDocument(ctx context.Context, db *gorm.DB, key string, dest any) error {
	if db == nil {
		return fmt.Errorf("settings documents: db is nil")
	}

	var doc models.SettingsDocument
	err := db.WithContext(ctx).Where(map[string]any{"key": key}).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("settings documents: get %q: %w", key, err)
	}

	if err := json.Unmarshal(doc.Value, dest); err != nil {
		return fmt.Errorf("settings documents: decode %q: %w", key, err)
	}
	return nil
}

// PutDocument stores value as the settings document for key, replacing any previous value.
func PutDocument(ctx context.Context, db *gorm.DB, key string, value any) error {
	if db == nil {
		return fmt.Errorf("settings documents: db is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("settings documents: key is required")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("settings documents: encode %q: %w", key, err)
	}

	record := models.SettingsDocument{Key: key, Value: datatypes.JSON(raw)}
	if err := db.WithContext(ctx).
		Where(map[string]any{"key": key}).
		Assign(map[string]any{"value": datatypes.JSON(raw)}).
		FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("settings documents: put %q: %w", key, err)
	}
	return nil
}
