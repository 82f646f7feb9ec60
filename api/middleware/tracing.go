package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/workstackhq/workstack/internal/tenancy"
	"github.com/workstackhq/workstack/internal/tracing"
)

// TracingMiddleware opens a server span per request, propagating an
// incoming trace when the headers carry one.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(
			c.Request.Context(),
			c.Request.Method+" "+c.FullPath(),
			c.Request.Header,
		)
		defer span.Finish()

		tracing.SetDefaultRestSpanTags(ctx, span)
		if id := c.Param("id"); id != "" {
			tracing.TagEntity(span, id)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		// Tenant resolution happens downstream of span creation, so tag on
		// the way out.
		if tenant := tenancy.TenantFromContext(c.Request.Context()); tenant != nil {
			tracing.TagTenant(span, tenant.Slug)
		}
		if status := c.Writer.Status(); status >= 500 {
			tracing.TraceErr(span, errors.Errorf("request failed with status %d", status))
		}
	}
}
