package checks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/monitoring"
)

// Database pings the settings store and reports connection pool usage.
func Database(db *gorm.DB) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		start := time.Now()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		result := monitoring.ResultFromError("database", err, time.Since(start))
		if err == nil {
			stats := sqlDB.Stats()
			result.Details = fmt.Sprintf("dialect=%s open=%d in_use=%d", db.Dialector.Name(), stats.OpenConnections, stats.InUse)
		}
		return result
	})
}
