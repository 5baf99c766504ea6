package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swiftcab/swiftcab-backend/pkg/metrics"
)

// Metrics records request durations per method, route template and status.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
