package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"nexacred.backend/pkg/logger"
	"nexacred.backend/pkg/utils"
)

// RequestIDKey is the gin context key carrying the request ID.
const RequestIDKey = "request_id"

// RequestIDMiddleware tags every request with an ID. An inbound
// X-Request-ID header is kept so IDs survive proxy hops; otherwise a
// fresh UUID is minted. The ID is echoed in the response header and
// placed in the request context for the structured logger.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = utils.GenerateUUIDv7().String()
		}

		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
