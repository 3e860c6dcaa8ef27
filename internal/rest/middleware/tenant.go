package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/types"
)

// TenantMiddleware resolves the caller's tenant and user from the request
// headers and sets them in the request context. Every billing operation is
// tenant scoped, so a missing tenant header rejects the request outright.
// The gateway in front of this service authenticates callers and forwards
// the verified identifiers.
func TenantMiddleware(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(types.HeaderTenantID)
		if tenantID == "" {
			logger.Debugw("request without tenant header",
				"path", c.Request.URL.Path,
			)
			c.JSON(http.StatusForbidden, gin.H{"error": "Missing tenant"})
			c.Abort()
			return
		}

		userID := c.GetHeader(types.HeaderUserID)
		if userID == "" {
			userID = types.DefaultUserID
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.CtxTenantID, tenantID)
		ctx = context.WithValue(ctx, types.CtxUserID, userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
