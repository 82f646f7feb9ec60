package tenancy

import (
	"context"

	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/models"
)

// PublicSchema is the shared partition used when no tenant is resolved.
const PublicSchema = "public"

type tenantContextKeyType struct{}

var tenantContextKey = tenantContextKeyType{}

// WithTenant returns a context scoped to the given tenant's partition.
// The parent context is untouched, so the prior scope (including "none")
// is restored simply by dropping the derived context. Because the value
// rides on context.Context it is owned by a single unit of work and is
// never visible to unrelated goroutines.
func WithTenant(ctx context.Context, tenant *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// WithPublic returns a context explicitly scoped to the public partition,
// masking any tenant set on a parent context.
func WithPublic(ctx context.Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, (*models.Tenant)(nil))
}

// TenantFromContext returns the active tenant, or nil for the public
// partition.
func TenantFromContext(ctx context.Context) *models.Tenant {
	tenant, ok := ctx.Value(tenantContextKey).(*models.Tenant)
	if !ok {
		return nil
	}
	return tenant
}

// RequireTenant returns the active tenant or ErrTenantNotFound when the
// context is scoped to the public partition.
func RequireTenant(ctx context.Context) (*models.Tenant, error) {
	tenant := TenantFromContext(ctx)
	if tenant == nil {
		return nil, er.ErrTenantNotFound
	}
	return tenant, nil
}

// SchemaFromContext returns the schema name data access must use for the
// current unit of work. It is consulted at the moment of each storage
// operation, not captured at request setup.
func SchemaFromContext(ctx context.Context) string {
	tenant := TenantFromContext(ctx)
	if tenant == nil {
		return PublicSchema
	}
	return tenant.SchemaName()
}

// RunWithTenant runs fn with the execution context scoped to the tenant.
// The caller's context is left untouched whether fn succeeds, fails or
// panics.
func RunWithTenant(ctx context.Context, tenant *models.Tenant, fn func(ctx context.Context) error) error {
	return fn(WithTenant(ctx, tenant))
}
