package checks

import (
	"context"
	"fmt"

	"github.com/carehub/storefront/internal/catalog"
	"github.com/carehub/storefront/internal/monitoring"
)

// Catalog reports down when the fixture source has nothing loaded and degraded
// when it serves no active banners.
func Catalog(source catalog.Source) monitoring.Check {
	return monitoring.NewCheck("catalog", func(context.Context) monitoring.ProbeResult {
		if source == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "catalog source not configured"}
		}
		fixtures := source.Fixtures()
		if fixtures == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "no fixtures loaded"}
		}

		banners := len(fixtures.ListBanners(catalog.BannerFilter{}))
		details := fmt.Sprintf("source=%s banners=%d categories=%d", source.Name(), banners, len(fixtures.Categories))
		if banners == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: details}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: details}
	})
}
