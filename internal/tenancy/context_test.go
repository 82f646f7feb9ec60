package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/models"
)

func TestSchemaFromContext_DefaultsToPublic(t *testing.T) {
	assert.Equal(t, PublicSchema, SchemaFromContext(context.Background()))
}

func TestWithTenant_ScopesSchema(t *testing.T) {
	tenant := &models.Tenant{ID: "tnnt_1", Slug: "acme"}
	ctx := WithTenant(context.Background(), tenant)

	assert.Equal(t, "acme", SchemaFromContext(ctx))
	assert.Equal(t, tenant, TenantFromContext(ctx))
}

func TestWithPublic_MasksParentTenant(t *testing.T) {
	tenant := &models.Tenant{ID: "tnnt_1", Slug: "acme"}
	ctx := WithTenant(context.Background(), tenant)
	ctx = WithPublic(ctx)

	assert.Nil(t, TenantFromContext(ctx))
	assert.Equal(t, PublicSchema, SchemaFromContext(ctx))
}

func TestRequireTenant(t *testing.T) {
	_, err := RequireTenant(context.Background())
	assert.ErrorIs(t, err, er.ErrTenantNotFound)

	tenant := &models.Tenant{ID: "tnnt_1", Slug: "acme"}
	got, err := RequireTenant(WithTenant(context.Background(), tenant))
	require.NoError(t, err)
	assert.Equal(t, tenant, got)
}

func TestRunWithTenant_DoesNotLeakScope(t *testing.T) {
	parent := context.Background()
	tenant := &models.Tenant{ID: "tnnt_1", Slug: "acme"}

	err := RunWithTenant(parent, tenant, func(ctx context.Context) error {
		assert.Equal(t, "acme", SchemaFromContext(ctx))
		return nil
	})
	require.NoError(t, err)

	// The parent context is untouched after the unit of work completes.
	assert.Equal(t, PublicSchema, SchemaFromContext(parent))
}

func TestRunWithTenant_RestoresScopeOnError(t *testing.T) {
	parent := WithTenant(context.Background(), &models.Tenant{ID: "tnnt_1", Slug: "acme"})

	_ = RunWithTenant(parent, &models.Tenant{ID: "tnnt_2", Slug: "globex"}, func(ctx context.Context) error {
		assert.Equal(t, "globex", SchemaFromContext(ctx))
		return assert.AnError
	})

	assert.Equal(t, "acme", SchemaFromContext(parent))
}
