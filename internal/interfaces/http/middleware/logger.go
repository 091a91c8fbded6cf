package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nexacred.backend/pkg/logger"
)

// LoggerMiddleware emits one structured access log line per request.
// It runs after RequestIDMiddleware so the line carries the request ID.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())

		// Handlers attach internal errors to the gin context.
		for _, ginErr := range c.Errors {
			logger.Error(c.Request.Context(), "request error",
				zap.String("path", path),
				zap.Error(ginErr.Err),
			)
		}
	}
}
