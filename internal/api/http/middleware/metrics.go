package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ctein-nexus/nexus-backend/internal/metrics"
)

// Metrics records request counts and latency labelled by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		metrics.RequestStarted()
		c.Next()
		metrics.RequestFinished(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
