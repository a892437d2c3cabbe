package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/survey-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so probing
// clients cannot grow the label set without bound.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template. Paths listed
// in skip (such as the scrape endpoint itself) are not observed.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
