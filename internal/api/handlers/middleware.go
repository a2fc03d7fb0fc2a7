package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/declanharris/portfolio-tracker/internal/metrics"
)

const ownerContextKey = "ownerID"

// OwnerRequired extracts the owner identity injected by the upstream auth
// proxy. The engine never reads ambient session state; every handler gets
// the owner id explicitly from the request context.
func OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader("X-Owner-ID")
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing owner identity"})
			return
		}
		c.Set(ownerContextKey, ownerID)
		c.Next()
	}
}

// ownerID returns the owner identity set by OwnerRequired.
func ownerID(c *gin.Context) string {
	return c.GetString(ownerContextKey)
}

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
