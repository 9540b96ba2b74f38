package monitoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carehub/storefront/internal/app/maintenance"
	"github.com/carehub/storefront/internal/catalog"
	"github.com/carehub/storefront/internal/database/testutil"
	"github.com/carehub/storefront/internal/monitoring"
	"github.com/carehub/storefront/internal/monitoring/checks"
)

func TestHealthManagerEvaluate(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager(time.Second)
	manager.Register(
		monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
			return monitoring.ProbeResult{Status: monitoring.StatusUp}
		}),
		monitoring.NewCheck("catalog", func(ctx context.Context) monitoring.ProbeResult {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "no fixtures"}
		}),
		monitoring.NewCheck("", nil),
	)

	report := manager.Evaluate(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "catalog", report.Checks[1].Component)
}

func TestHealthManagerRecoversPanics(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager(0)
	manager.Register(monitoring.NewCheck("boom", func(context.Context) monitoring.ProbeResult {
		panic("kaboom")
	}))

	report := manager.Evaluate(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, "kaboom", report.Checks[0].Details)
	require.Equal(t, "boom", report.Checks[0].Component)
}

func TestEmptyManagerIsUp(t *testing.T) {
	t.Parallel()

	report := monitoring.NewHealthManager(0).Evaluate(context.Background())
	require.True(t, report.Success)
	require.Equal(t, monitoring.StatusUp, report.Status)
}

func TestWorstAndResultFromError(t *testing.T) {
	t.Parallel()

	require.Equal(t, monitoring.StatusDegraded, monitoring.Worst(monitoring.StatusUp, monitoring.StatusDegraded))
	require.Equal(t, monitoring.StatusDown, monitoring.Worst(monitoring.StatusDown, monitoring.StatusDegraded))

	require.Equal(t, monitoring.StatusUp, monitoring.ResultFromError("x", nil, 0).Status)
	require.Equal(t, monitoring.StatusDown, monitoring.ResultFromError("x", errors.New("refused"), 0).Status)
	require.Equal(t, monitoring.StatusDegraded, monitoring.ResultFromError("x", context.DeadlineExceeded, 0).Status)
}

func TestDatabaseCheck(t *testing.T) {
	t.Parallel()

	db := testutil.MustOpenTestDB(t)
	up := checks.Database(db).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, up.Status)
	require.Contains(t, up.Details, "dialect=sqlite")
	require.Equal(t, monitoring.StatusDown, checks.Database(nil).Run(context.Background()).Status)
}

type emptySource struct{}

func (emptySource) Name() string                { return "empty" }
func (emptySource) Fixtures() *catalog.Fixtures { return &catalog.Fixtures{} }

func TestCatalogCheck(t *testing.T) {
	t.Parallel()

	result := checks.Catalog(catalog.NewStaticSource()).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Contains(t, result.Details, "source=static")

	empty := checks.Catalog(emptySource{}).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, empty.Status)

	require.Equal(t, monitoring.StatusDown, checks.Catalog(nil).Run(context.Background()).Status)
}

type fakeBackupStatus maintenance.RunStatus

func (f fakeBackupStatus) Status() maintenance.RunStatus { return maintenance.RunStatus(f) }

func TestBackupsCheck(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cases := []struct {
		name   string
		status fakeBackupStatus
		want   monitoring.ProbeStatus
	}{
		{"never run", fakeBackupStatus{}, monitoring.StatusUp},
		{"healthy", fakeBackupStatus{TotalRuns: 3, LastRunAt: now.Add(-time.Hour)}, monitoring.StatusUp},
		{"failing", fakeBackupStatus{TotalRuns: 3, ConsecutiveFailures: 2, LastError: "disk full", LastRunAt: now}, monitoring.StatusDegraded},
		{"stale", fakeBackupStatus{TotalRuns: 1, LastRunAt: now.Add(-72 * time.Hour)}, monitoring.StatusDegraded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := checks.Backups(tc.status, 48*time.Hour, clock).Run(context.Background())
			require.Equal(t, tc.want, result.Status)
		})
	}

	require.Equal(t, monitoring.StatusDegraded, checks.Backups(nil, 0, clock).Run(context.Background()).Status)
}
