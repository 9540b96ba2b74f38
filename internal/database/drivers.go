package database

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const applicationName = "storefront"

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn, err := sqliteDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	// The _foreign_keys DSN flag only covers new pool connections opened by
	// the mattn driver; set it explicitly for the first one as well.
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	return db, nil
}

func sqliteDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return MemoryDSN(applicationName), nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	return "file:" + filepath.ToSlash(path) + "?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000", nil
}

// MemoryDSN names a private in-memory SQLite database. Connections opened
// with the same name share data while at least one stays open.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
}

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := postgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// postgresDSN renders a libpq keyword/value string. sslmode defaults to
// disable for local development databases.
func postgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if err := cfg.requireCredentials(DriverPostgres); err != nil {
		return "", err
	}

	host, port := cfg.endpoint("localhost", 5432)
	params := map[string]string{
		"host":             host,
		"port":             strconv.Itoa(port),
		"user":             cfg.User,
		"dbname":           cfg.Name,
		"sslmode":          "disable",
		"application_name": applicationName,
	}
	if cfg.Password != "" {
		params["password"] = cfg.Password
	}
	for key, value := range cfg.Options {
		params[key] = value
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	return strings.Join(pairs, " "), nil
}

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := mysqlDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(gormmysql.Open(dsn), gormConfig())
}

// mysqlDSN formats the connection through the driver's own Config so that
// credentials and parameters are escaped the way the driver parses them.
func mysqlDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if err := cfg.requireCredentials(DriverMySQL); err != nil {
		return "", err
	}

	host, port := cfg.endpoint("127.0.0.1", 3306)

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	for key, value := range cfg.Options {
		mc.Params[key] = value
	}
	return mc.FormatDSN(), nil
}

func (cfg Config) requireCredentials(driver string) error {
	if strings.TrimSpace(cfg.User) == "" || strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%s configuration requires user and database name", driver)
	}
	return nil
}

func (cfg Config) endpoint(defaultHost string, defaultPort int) (string, int) {
	host, port := strings.TrimSpace(cfg.Host), cfg.Port
	if host == "" {
		host = defaultHost
	}
	if port <= 0 {
		port = defaultPort
	}
	return host, port
}
