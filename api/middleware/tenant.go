package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workstackhq/workstack/internal/tenancy"
)

// TenantResolutionMiddleware resolves the request Host header to a tenant
// and scopes the request context to its partition. Unknown and inactive
// hostnames fall through to the public partition; handlers that need a
// tenant guard with RequireTenant.
func TenantResolutionMiddleware(resolver *tenancy.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tenant, err := resolver.Resolve(ctx, c.Request.Host)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant resolution failed"})
			c.Abort()
			return
		}

		if tenant != nil {
			ctx = tenancy.WithTenant(ctx, tenant)
			c.Set("tenant", tenant.Slug)
		} else {
			ctx = tenancy.WithPublic(ctx)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireTenantMiddleware rejects requests whose hostname did not resolve
// to an active tenant. Applied to the partition-scoped route groups.
func RequireTenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := tenancy.RequireTenant(c.Request.Context()); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown workspace"})
			c.Abort()
			return
		}
		c.Next()
	}
}
