package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/pkg/metrics"
)

// Metrics records request latency per route template. Unmatched routes share
// one label so random paths cannot blow up cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.APILatency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
