package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/carehub/storefront/internal/catalog"
	"github.com/carehub/storefront/internal/database"
)

// EnvPrefix namespaces environment overrides, e.g. STOREFRONT_SERVER_PORT.
const EnvPrefix = "STOREFRONT"

// Config represents the runtime configuration for the storefront dev backend.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Toasts     ToastConfig      `mapstructure:"toasts"`
	Settings   SettingsConfig   `mapstructure:"settings"`
	Backups    BackupConfig     `mapstructure:"backups"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	LogEncoding     string        `mapstructure:"log_encoding"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// CatalogConfig selects where banner, menu and category fixtures come from.
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Watch  bool   `mapstructure:"watch"`
}

// DatabaseConfig describes connection options for the settings store.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Connection converts the selected driver's settings into a database.Config.
func (d DatabaseConfig) Connection() database.Config {
	cfg := database.Config{Driver: d.Driver, Path: d.Path, DSN: d.DSN}

	var auth DBAuthConfig
	switch strings.ToLower(strings.TrimSpace(d.Driver)) {
	case database.DriverPostgres, "postgresql":
		auth = d.Postgres
	case database.DriverMySQL, "mariadb":
		auth = d.MySQL
	default:
		return cfg
	}

	cfg.Host = auth.Host
	cfg.Port = auth.Port
	cfg.Name = auth.Database
	cfg.User = auth.Username
	cfg.Password = auth.Password
	return cfg
}

// ToastConfig tunes the notification queue.
type ToastConfig struct {
	DefaultDuration time.Duration `mapstructure:"default_duration"`
}

// SettingsConfig tunes the settings service.
type SettingsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// BackupConfig controls the scheduled backup runner. The schedule itself is
// stored with the settings and edited through the API.
type BackupConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
	MaxAge     time.Duration `mapstructure:"max_age"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig tunes the readiness probes.
type HealthConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// An explicit file path takes precedence over the search paths.
func LoadConfig(file string, paths ...string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &config, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Catalog.Source {
	case catalog.SourceStatic:
	case catalog.SourceFile:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			err = multierr.Append(err, errors.New("catalog.path is required when catalog.source is file"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("catalog.source %q must be %s or %s", c.Catalog.Source, catalog.SourceStatic, catalog.SourceFile))
	}

	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case database.DriverSQLite, database.DriverPostgres, "postgresql", database.DriverMySQL, "mariadb":
	default:
		err = multierr.Append(err, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	if c.Toasts.DefaultDuration < 0 {
		err = multierr.Append(err, errors.New("toasts.default_duration must not be negative"))
	}
	if c.Monitoring.Prometheus.Enabled && !strings.HasPrefix(c.Monitoring.Prometheus.Endpoint, "/") {
		err = multierr.Append(err, errors.New("monitoring.prometheus.endpoint must start with /"))
	}

	return err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_encoding", "json")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("catalog.source", catalog.SourceStatic)
	v.SetDefault("catalog.path", "./config/catalog.yaml")
	v.SetDefault("catalog.watch", true)

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.path", "./data/storefront.sqlite")
	v.SetDefault("database.dsn", "")
	for driver, port := range map[string]int{"postgres": 5432, "mysql": 3306} {
		v.SetDefault("database."+driver+".host", "localhost")
		v.SetDefault("database."+driver+".port", port)
		v.SetDefault("database."+driver+".database", "storefront")
		v.SetDefault("database."+driver+".username", "")
		v.SetDefault("database."+driver+".password", "")
	}

	v.SetDefault("toasts.default_duration", "3s")

	v.SetDefault("settings.cache_ttl", "5m")

	v.SetDefault("backups.enabled", true)
	v.SetDefault("backups.run_timeout", "5m")
	v.SetDefault("backups.max_age", "48h")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
	v.SetDefault("monitoring.health_check.probe_timeout", "2s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
