package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/api"
	"github.com/carehub/storefront/internal/app"
	"github.com/carehub/storefront/internal/app/maintenance"
	"github.com/carehub/storefront/internal/catalog"
	"github.com/carehub/storefront/internal/database"
	"github.com/carehub/storefront/internal/monitoring"
	"github.com/carehub/storefront/internal/monitoring/checks"
	"github.com/carehub/storefront/internal/realtime"
	"github.com/carehub/storefront/internal/services"
	"github.com/carehub/storefront/internal/toast"
	"github.com/carehub/storefront/pkg/logger"
)

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Catalog   catalog.Source
	Toasts    *toast.Queue
	Hub       *realtime.Hub
	Settings  *services.SettingsService
	Scheduler *maintenance.BackupScheduler
	Health    *monitoring.HealthManager
	Router    *gin.Engine

	cancelRelay context.CancelFunc
	backupsOn   bool
}

// bootstrapRuntime opens the settings store, builds the catalog source, the
// toast queue and its hub relay, starts scheduled backups and assembles the router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, startedAt time.Time, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if shutdownErr := stack.Shutdown(context.Background()); shutdownErr != nil {
				log.Warn("partial bootstrap cleanup", zap.Error(shutdownErr))
			}
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Hub = realtime.NewHub(realtime.WithAllowedOrigins(cfg.Server.CORSOrigins))

	stack.Catalog, err = initialiseCatalog(cfg.Catalog, stack.Hub)
	if err != nil {
		return nil, err
	}

	stack.Toasts = toast.NewQueue(toast.WithDefaultDuration(cfg.Toasts.DefaultDuration))
	relayCtx, cancel := context.WithCancel(context.Background())
	stack.cancelRelay = cancel
	realtime.ForwardToasts(relayCtx, stack.Toasts, stack.Hub)

	stack.Settings, err = services.NewSettingsService(stack.DB,
		services.WithCacheTTL(cfg.Settings.CacheTTL),
		services.WithBuildInfo(version, startedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise settings service: %w", err)
	}

	stack.Scheduler = maintenance.NewBackupScheduler(stack.Settings, maintenance.WithRunTimeout(cfg.Backups.RunTimeout))
	if cfg.Backups.Enabled {
		scheduler := stack.Scheduler
		stack.Settings.SetScheduleListener(func(schedule services.BackupSchedule) {
			if err := scheduler.Reschedule(schedule); err != nil {
				log.Warn("reschedule backups", zap.Error(err))
			}
		})
		if err := stack.Scheduler.Start(ctx); err != nil {
			return nil, fmt.Errorf("start backup scheduler: %w", err)
		}
		stack.backupsOn = true
	}

	stack.Health = monitoring.NewHealthManager(cfg.Monitoring.Health.ProbeTimeout)
	stack.Health.Register(
		checks.Database(stack.DB),
		checks.Catalog(stack.Catalog),
		checks.Backups(stack.Scheduler, cfg.Backups.MaxAge, nil),
	)

	stack.Router, err = api.NewRouter(cfg, api.Dependencies{
		Catalog:   stack.Catalog,
		Toasts:    stack.Toasts,
		Hub:       stack.Hub,
		Settings:  stack.Settings,
		Health:    stack.Health,
		StartedAt: startedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background work and releases resources, reporting every failure.
func (s *runtimeStack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs error

	if s.Scheduler != nil && s.backupsOn {
		stopCtx := s.Scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			errs = multierr.Append(errs, fmt.Errorf("wait for backup job: %w", ctx.Err()))
		}
		s.backupsOn = false
	}

	if fs, ok := s.Catalog.(*catalog.FileSource); ok && fs != nil {
		errs = multierr.Append(errs, fs.Stop())
	}

	if s.cancelRelay != nil {
		s.cancelRelay()
	}
	if s.Toasts != nil {
		s.Toasts.Close()
	}
	if s.Hub != nil {
		s.Hub.Close()
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close database: %w", err))
		}
		s.DB = nil
	}

	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.Connection()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

// initialiseCatalog selects the fixture source. A file source announces every
// reload on the catalog stream and watches the file when configured to.
func initialiseCatalog(cfg app.CatalogConfig, hub *realtime.Hub) (catalog.Source, error) {
	log := logger.WithModule("catalog")

	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", catalog.SourceStatic:
		log.Info("serving compiled-in catalog fixtures")
		return catalog.NewStaticSource(), nil
	case catalog.SourceFile:
		source, err := catalog.NewFileSource(cfg.Path, catalog.WithReloadHook(func(fixtures *catalog.Fixtures) {
			hub.Broadcast(realtime.StreamCatalog, realtime.CatalogMessage(catalog.SourceFile, fixtures))
		}))
		if err != nil {
			return nil, fmt.Errorf("load catalog fixtures: %w", err)
		}
		if cfg.Watch {
			if err := source.Start(); err != nil {
				return nil, fmt.Errorf("watch catalog fixtures: %w", err)
			}
		}
		log.Info("serving catalog fixtures from file", zap.String("path", cfg.Path), zap.Bool("watch", cfg.Watch))
		return source, nil
	default:
		return nil, fmt.Errorf("unsupported catalog source %q", cfg.Source)
	}
}
