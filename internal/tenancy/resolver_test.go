package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/models"
)

type fakeDomainStore struct {
	tenants map[string]*models.Tenant
	err     error
	queries []string
}

func (f *fakeDomainStore) GetByHostname(ctx context.Context, hostname string) (*models.Tenant, *models.TenantDomain, error) {
	f.queries = append(f.queries, hostname)
	if f.err != nil {
		return nil, nil, f.err
	}
	tenant, ok := f.tenants[hostname]
	if !ok {
		return nil, nil, nil
	}
	return tenant, &models.TenantDomain{TenantID: tenant.ID, Hostname: hostname}, nil
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme.workstack.app", "acme.workstack.app"},
		{"ACME.Workstack.App", "acme.workstack.app"},
		{"acme.workstack.app:8080", "acme.workstack.app"},
		{"  acme.workstack.app  ", "acme.workstack.app"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHost(tt.in))
	}
}

func TestResolve_ActiveTenant(t *testing.T) {
	store := &fakeDomainStore{tenants: map[string]*models.Tenant{
		"acme.workstack.app": {ID: "tnnt_1", Slug: "acme", Active: true},
	}}
	resolver := NewResolver(store)

	tenant, err := resolver.Resolve(context.Background(), "ACME.workstack.app:443")
	require.NoError(t, err)
	require.NotNil(t, tenant)
	assert.Equal(t, "acme", tenant.Slug)
	assert.Equal(t, []string{"acme.workstack.app"}, store.queries)
}

func TestResolve_UnknownHostFallsBackToPublic(t *testing.T) {
	resolver := NewResolver(&fakeDomainStore{tenants: map[string]*models.Tenant{}})

	tenant, err := resolver.Resolve(context.Background(), "nobody.workstack.app")
	require.NoError(t, err)
	assert.Nil(t, tenant)
}

func TestResolve_InactiveTenantBehavesLikeMiss(t *testing.T) {
	store := &fakeDomainStore{tenants: map[string]*models.Tenant{
		"acme.workstack.app": {ID: "tnnt_1", Slug: "acme", Active: false},
	}}
	resolver := NewResolver(store)

	tenant, err := resolver.Resolve(context.Background(), "acme.workstack.app")
	require.NoError(t, err)
	assert.Nil(t, tenant)
}

func TestResolve_EmptyHost(t *testing.T) {
	store := &fakeDomainStore{}
	resolver := NewResolver(store)

	tenant, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, tenant)
	assert.Empty(t, store.queries)
}

func TestResolve_StoreError(t *testing.T) {
	resolver := NewResolver(&fakeDomainStore{err: assert.AnError})

	_, err := resolver.Resolve(context.Background(), "acme.workstack.app")
	assert.Error(t, err)
}

func TestResolveRequired(t *testing.T) {
	resolver := NewResolver(&fakeDomainStore{tenants: map[string]*models.Tenant{}})

	_, err := resolver.ResolveRequired(context.Background(), "nobody.workstack.app")
	assert.ErrorIs(t, err, er.ErrTenantNotFound)
}
