package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"nexacred.backend/internal/metrics"
)

// MetricsMiddleware records request counts and latencies. The route template
// is used as the path label; unmatched requests share a single label value.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
