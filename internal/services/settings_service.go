package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/cache"
	"github.com/carehub/storefront/internal/database"
	apperrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/logger"
	"github.com/carehub/storefront/pkg/validator"
)

const (
	defaultDocumentCacheTTL = 5 * time.Minute
	documentCachePrefix     = "settings:"
)

// SettingsOption customises a SettingsService.
type SettingsOption func(*SettingsService)

// WithCache replaces the document cache.
func WithCache(store cache.Store) SettingsOption {
	return func(s *SettingsService) {
		if store != nil {
			s.cache = store
		}
	}
}

// WithCacheTTL sets how long decoded documents stay cached.
func WithCacheTTL(ttl time.Duration) SettingsOption {
	return func(s *SettingsService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithNow overrides the clock, primarily for tests.
func WithNow(now func() time.Time) SettingsOption {
	return func(s *SettingsService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBuildInfo records the version and start time reported by GetSystemInfo.
func WithBuildInfo(version string, startedAt time.Time) SettingsOption {
	return func(s *SettingsService) {
		if version != "" {
			s.version = version
		}
		if !startedAt.IsZero() {
			s.startedAt = startedAt
		}
	}
}

// WithScheduleListener registers a callback run after the backup schedule changes.
func WithScheduleListener(fn func(BackupSchedule)) SettingsOption {
	return func(s *SettingsService) {
		s.onSchedule = fn
	}
}

// SettingsService backs the /api/settings resource tree.
type SettingsService struct {
	db         *gorm.DB
	cache      cache.Store
	cacheTTL   time.Duration
	now        func() time.Time
	version    string
	startedAt  time.Time
	onSchedule func(BackupSchedule)
	log        *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(db *gorm.DB, opts ...SettingsOption) (*SettingsService, error) {
	if db == nil {
		return nil, errors.New("settings service: db is required")
	}

	svc := &SettingsService{
		db:        db,
		cache:     cache.NewMemoryStore(),
		cacheTTL:  defaultDocumentCacheTTL,
		now:       time.Now,
		version:   "dev",
		startedAt: time.Now(),
		log:       logger.WithModule("settings"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SetScheduleListener replaces the schedule change callback after construction.
func (s *SettingsService) SetScheduleListener(fn func(BackupSchedule)) {
	s.onSchedule = fn
}

// loadDocument fills dest from cache, then the database, then defaults.
func (s *SettingsService) loadDocument(ctx context.Context, key string, dest any, defaults func() any) error {
	if raw, ok, err := s.cache.Get(ctx, documentCachePrefix+key); err == nil && ok {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
	}

	err := database.GetDocument(ctx, s.db, key, dest)
	if errors.Is(err, database.ErrDocumentNotFound) {
		raw, merr := json.Marshal(defaults())
		if merr != nil {
			return fmt.Errorf("settings service: encode %s defaults: %w", key, merr)
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("settings service: decode %s defaults: %w", key, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("settings service: %w", err)
	}

	s.cacheDocument(ctx, key, dest)
	return nil
}

func (s *SettingsService) storeDocument(ctx context.Context, key string, value any) error {
	if err := database.PutDocument(ctx, s.db, key, value); err != nil {
		return fmt.Errorf("settings service: %w", err)
	}
	s.cacheDocument(ctx, key, value)
	return nil
}

func (s *SettingsService) cacheDocument(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, documentCachePrefix+key, raw, s.cacheTTL); err != nil {
		s.log.Debug("cache document failed", zap.String("key", key), zap.Error(err))
	}
}

// applyPatch overlays patch onto current and decodes the result into dest.
// Unknown keys and mismatched types are rejected; dest is then validated.
func applyPatch(current any, patch map[string]any, dest any) error {
	raw, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("settings service: encode current document: %w", err)
	}

	merged := make(map[string]any)
	if err := json.Unmarshal(raw, &merged); err != nil {
		return fmt.Errorf("settings service: decode current document: %w", err)
	}
	for key, value := range patch {
		merged[key] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      dest,
	})
	if err != nil {
		return fmt.Errorf("settings service: build decoder: %w", err)
	}
	if err := decoder.Decode(merged); err != nil {
		return apperrors.NewBadRequest(err.Error())
	}

	if err := validator.ValidateStruct(dest); err != nil {
		return apperrors.NewBadRequest(err.Error())
	}
	return nil
}
