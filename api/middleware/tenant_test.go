package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tenancy"
)

type fakeDomainStore struct {
	tenants map[string]*models.Tenant
	err     error
}

func (f *fakeDomainStore) GetByHostname(ctx context.Context, hostname string) (*models.Tenant, *models.TenantDomain, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	tenant, ok := f.tenants[hostname]
	if !ok {
		return nil, nil, nil
	}
	return tenant, &models.TenantDomain{TenantID: tenant.ID, Hostname: hostname, IsPrimary: true}, nil
}

func newTenantRouter(store *fakeDomainStore, requireTenant bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TenantResolutionMiddleware(tenancy.NewResolver(store)))
	if requireTenant {
		r.Use(RequireTenantMiddleware())
	}
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"partition": tenancy.SchemaFromContext(c.Request.Context())})
	})
	return r
}

func TestTenantResolution_KnownHostname(t *testing.T) {
	store := &fakeDomainStore{tenants: map[string]*models.Tenant{
		"acme.workstack.app": {ID: "tnnt_1", Slug: "acme", Active: true},
	}}
	router := newTenantRouter(store, false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Host = "ACME.workstack.app:443"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"partition":"acme"`)
}

func TestTenantResolution_UnknownHostnameFallsBackToPublic(t *testing.T) {
	store := &fakeDomainStore{tenants: map[string]*models.Tenant{}}
	router := newTenantRouter(store, false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Host = "nobody.example.com"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"partition":"public"`)
}

func TestTenantResolution_InactiveTenantBehavesLikeUnknown(t *testing.T) {
	store := &fakeDomainStore{tenants: map[string]*models.Tenant{
		"acme.workstack.app": {ID: "tnnt_1", Slug: "acme", Active: false},
	}}
	router := newTenantRouter(store, true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Host = "acme.workstack.app"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantResolution_StoreError(t *testing.T) {
	store := &fakeDomainStore{err: assert.AnError}
	router := newTenantRouter(store, false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Host = "acme.workstack.app"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireTenant_GuardsWorkspaceRoutes(t *testing.T) {
	store := &fakeDomainStore{tenants: map[string]*models.Tenant{
		"acme.workstack.app": {ID: "tnnt_1", Slug: "acme", Active: true},
	}}
	router := newTenantRouter(store, true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Host = "acme.workstack.app"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Host = "nobody.example.com"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
