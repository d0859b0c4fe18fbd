package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/enspm-hub/hub-backend/internal/audit"
)

// ClientMetaMiddleware captures the caller's IP and user agent into the
// request context so audit writes deep in the service layer can record them
// without touching *gin.Context.
func ClientMetaMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClientMeta(
			c.Request.Context(),
			c.GetHeader("X-Forwarded-For"),
			c.ClientIP(),
			c.Request.UserAgent(),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
