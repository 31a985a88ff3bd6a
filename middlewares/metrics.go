package middlewares

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/config"
)

// MetricsMiddleware counts requests by method, route template and status.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		config.HTTPRequestsTotal.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Inc()
	}
}
