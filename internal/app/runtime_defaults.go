package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/carehub/storefront/internal/toast"
)

// ApplyRuntimeDefaults replaces zero durations left by an explicit "0" in a
// config file or environment and tidies list values. It returns the keys it
// changed so callers can log them.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	changed := make(map[string]bool)
	fill := func(key string, value *time.Duration, fallback time.Duration) {
		if *value <= 0 {
			*value = fallback
			changed[key] = true
		}
	}

	fill("toasts.default_duration", &cfg.Toasts.DefaultDuration, toast.DefaultDuration)
	fill("server.shutdown_timeout", &cfg.Server.ShutdownTimeout, 10*time.Second)
	fill("settings.cache_ttl", &cfg.Settings.CacheTTL, 5*time.Minute)
	fill("backups.run_timeout", &cfg.Backups.RunTimeout, 5*time.Minute)
	fill("monitoring.health_check.probe_timeout", &cfg.Monitoring.Health.ProbeTimeout, 2*time.Second)

	origins := normaliseOrigins(cfg.Server.CORSOrigins)
	if len(origins) != len(cfg.Server.CORSOrigins) {
		changed["server.cors_origins"] = true
	}
	cfg.Server.CORSOrigins = origins

	return changed, nil
}

func normaliseOrigins(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimRight(strings.TrimSpace(value), "/")
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
