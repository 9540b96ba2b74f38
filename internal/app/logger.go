package app

import (
	"strings"

	"github.com/carehub/storefront/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server section,
// defaulting to info level and JSON output.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.InitWithOptions(logger.Options{
		Level:    level,
		Encoding: strings.TrimSpace(cfg.LogEncoding),
	})
}
