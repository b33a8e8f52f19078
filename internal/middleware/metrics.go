package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tkt-widget-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so raw URLs
// never become label values.
const unmatchedRoute = "unmatched"

// probeRoutes are scraped or polled by infrastructure and not counted.
var probeRoutes = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics records request latency and counts labelled by route template.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		path := c.FullPath()
		if _, skip := probeRoutes[path]; skip {
			c.Next()
			return
		}
		if path == "" {
			path = unmatchedRoute
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
