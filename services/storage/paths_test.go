package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tenancy"
)

func TestResolveStoragePath(t *testing.T) {
	public := context.Background()
	acme := tenancy.WithTenant(public, &models.Tenant{ID: "tnnt_1", Slug: "acme", Active: true})

	key, err := ResolveStoragePath(acme, "photos/empl_1.png")
	require.NoError(t, err)
	assert.Equal(t, "acme/photos/empl_1.png", key)

	// Leading slashes are normalized away before prefixing.
	key, err = ResolveStoragePath(acme, "//photos/empl_1.png")
	require.NoError(t, err)
	assert.Equal(t, "acme/photos/empl_1.png", key)

	// Without a tenant in scope the key lands under the public prefix.
	key, err = ResolveStoragePath(public, "branding/logo.svg")
	require.NoError(t, err)
	assert.Equal(t, "public/branding/logo.svg", key)
}

func TestResolveStoragePath_Rejections(t *testing.T) {
	ctx := tenancy.WithTenant(context.Background(), &models.Tenant{ID: "tnnt_1", Slug: "acme", Active: true})

	_, err := ResolveStoragePath(ctx, "")
	assert.Error(t, err)

	_, err = ResolveStoragePath(ctx, "/")
	assert.Error(t, err)

	_, err = ResolveStoragePath(ctx, "photos/../../public/branding/logo.svg")
	assert.Error(t, err)
}
