package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nexacred.backend/internal/metrics"
)

const serviceVersion = "0.1.0"

// applyCORSMiddleware reflects the request origin. The API serves first-party
// frontends on changing localhost ports, so the allowlist lives upstream.
func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "nexacred-backend",
			"version":   serviceVersion,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func registerMetricsRoute(r *gin.Engine, m *metrics.Metrics) {
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
