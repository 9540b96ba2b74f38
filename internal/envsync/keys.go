package envsync

// Key is one line of a generated file. Value is taken from the source key
// Source when set there, otherwise Default, which may reference other source
// keys as ${NAME}.
type Key struct {
	Name    string
	Source  string
	Default string
}

// SourceDefaults fill keys missing from the root .env before targets resolve.
var SourceDefaults = []Key{
	{Name: "APP_ENV", Default: "development"},
	{Name: "API_HOST", Default: "localhost"},
	{Name: "API_PORT", Default: "5000"},
	{Name: "API_URL", Default: "http://${API_HOST}:${API_PORT}/api"},
	{Name: "WS_URL", Default: "ws://${API_HOST}:${API_PORT}/ws"},
	{Name: "FRONTEND_URL", Default: "http://localhost:3000"},
	{Name: "STORE_NAME", Default: "CareHub Pharmacy"},
	{Name: "LOG_LEVEL", Default: "info"},
	{Name: "CATALOG_SOURCE", Default: "static"},
	{Name: "CATALOG_PATH", Default: "./config/catalog.yaml"},
	{Name: "DB_DRIVER", Default: "sqlite"},
	{Name: "DB_PATH", Default: "./data/storefront.sqlite"},
	{Name: "DB_DSN", Default: ""},
	{Name: "TOAST_DURATION_MS", Default: "3000"},
}

// FrontendKeys make up frontend/.env.
var FrontendKeys = []Key{
	{Name: "REACT_APP_ENV", Source: "APP_ENV"},
	{Name: "REACT_APP_API_URL", Source: "API_URL"},
	{Name: "REACT_APP_SETTINGS_API_URL", Default: "${API_URL}/settings"},
	{Name: "REACT_APP_WS_URL", Source: "WS_URL"},
	{Name: "REACT_APP_STORE_NAME", Source: "STORE_NAME"},
	{Name: "REACT_APP_TOAST_DURATION_MS", Source: "TOAST_DURATION_MS"},
}

// BackendKeys make up backend/.env. Names match the server's STOREFRONT_
// environment overrides so the file can be sourced directly.
var BackendKeys = []Key{
	{Name: "STOREFRONT_SERVER_PORT", Source: "API_PORT"},
	{Name: "STOREFRONT_SERVER_LOG_LEVEL", Source: "LOG_LEVEL"},
	{Name: "STOREFRONT_SERVER_CORS_ORIGINS", Source: "FRONTEND_URL"},
	{Name: "STOREFRONT_CATALOG_SOURCE", Source: "CATALOG_SOURCE"},
	{Name: "STOREFRONT_CATALOG_PATH", Source: "CATALOG_PATH"},
	{Name: "STOREFRONT_DATABASE_DRIVER", Source: "DB_DRIVER"},
	{Name: "STOREFRONT_DATABASE_PATH", Source: "DB_PATH"},
	{Name: "STOREFRONT_DATABASE_DSN", Source: "DB_DSN"},
	{Name: "STOREFRONT_TOASTS_DEFAULT_DURATION", Default: "${TOAST_DURATION_MS}ms"},
}
