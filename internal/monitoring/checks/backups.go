package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/carehub/storefront/internal/app/maintenance"
	"github.com/carehub/storefront/internal/monitoring"
)

// BackupStatusProvider exposes the scheduler's last run.
type BackupStatusProvider interface {
	Status() maintenance.RunStatus
}

// Backups degrades when scheduled backups keep failing or have not run within
// maxAge. A scheduler that has never run is healthy.
func Backups(provider BackupStatusProvider, maxAge time.Duration, now func() time.Time) monitoring.Check {
	if now == nil {
		now = time.Now
	}

	return monitoring.NewCheck("backups", func(context.Context) monitoring.ProbeResult {
		if provider == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "backup scheduler unavailable"}
		}

		status := provider.Status()
		if status.TotalRuns == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "no scheduled run yet"}
		}
		if status.ConsecutiveFailures > 0 {
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: fmt.Sprintf("%d consecutive failures: %s", status.ConsecutiveFailures, status.LastError),
			}
		}
		if maxAge > 0 && now().Sub(status.LastRunAt) > maxAge {
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: "stale run " + status.LastRunAt.UTC().Format(time.RFC3339),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	})
}
