package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records per-request metrics.
type HTTPObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Metrics instruments every request with duration and count metrics. The
// route template is used as the path label to keep cardinality bounded.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observer.ObserveHTTPRequest(c.Request.Method, path, status, time.Since(start))
	}
}
