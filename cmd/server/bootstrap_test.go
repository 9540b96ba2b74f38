package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carehub/storefront/internal/app"
	"github.com/carehub/storefront/internal/catalog"
	"github.com/carehub/storefront/internal/database"
	"github.com/carehub/storefront/internal/toast"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()

	cfg := &app.Config{
		Server: app.ServerConfig{Port: 0, LogLevel: "error"},
		Catalog: app.CatalogConfig{
			Source: catalog.SourceStatic,
		},
		Database: app.DatabaseConfig{
			Driver: database.DriverSQLite,
			DSN:    database.MemoryDSN(uuid.NewString()),
		},
		Backups: app.BackupConfig{Enabled: true, MaxAge: 48 * time.Hour},
		Monitoring: app.MonitoringConfig{
			Health: app.HealthConfig{Enabled: true},
		},
	}
	_, err := app.ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	return cfg
}

func TestBootstrapRuntimeStatic(t *testing.T) {
	cfg := testConfig(t)

	stack, err := bootstrapRuntime(context.Background(), cfg, time.Now(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, catalog.SourceStatic, stack.Catalog.Name())
	assert.NotEmpty(t, stack.Scheduler.Spec())

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/banners", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Data)

	stack.Toasts.Enqueue(toast.Descriptor{Title: "Added to cart"})
	require.Equal(t, 1, stack.Toasts.Len())

	require.NoError(t, stack.Shutdown(context.Background()))
	require.Equal(t, 0, stack.Toasts.Len())
	require.Nil(t, stack.DB)
}

func TestBootstrapRuntimeFileCatalog(t *testing.T) {
	data, err := catalog.Encode(catalog.DefaultFixtures())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := testConfig(t)
	cfg.Catalog = app.CatalogConfig{Source: catalog.SourceFile, Path: path, Watch: true}
	cfg.Backups.Enabled = false

	stack, err := bootstrapRuntime(context.Background(), cfg, time.Now(), zap.NewNop())
	require.NoError(t, err)

	fs, ok := stack.Catalog.(*catalog.FileSource)
	require.True(t, ok)
	assert.Equal(t, path, fs.Path())
	assert.Empty(t, stack.Scheduler.Spec())

	require.NoError(t, stack.Shutdown(context.Background()))
}

func TestBootstrapRuntimeRejectsUnknownCatalogSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Source = "ftp"

	_, err := bootstrapRuntime(context.Background(), cfg, time.Now(), zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), `unsupported catalog source "ftp"`)
}

func TestBootstrapRuntimeMissingFixtureFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog = app.CatalogConfig{Source: catalog.SourceFile, Path: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := bootstrapRuntime(context.Background(), cfg, time.Now(), zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "load catalog fixtures")
}

func TestRunRejectsMissingConfigFile(t *testing.T) {
	err := run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "config: read file")
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	err := run(context.Background(), []string{"--nope"})
	require.Error(t, err)
}
