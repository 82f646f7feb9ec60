package tenancy

import (
	"context"
	"net"
	"strings"

	"github.com/opentracing/opentracing-go"

	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tracing"
)

// DomainStore is the slice of the partition store the resolver needs.
// Implemented by repository.TenantRepository.
type DomainStore interface {
	GetByHostname(ctx context.Context, hostname string) (*models.Tenant, *models.TenantDomain, error)
}

// Resolver maps inbound hostnames to tenants. Resolution is re-queried at
// the start of every unit of work; the only caching is the per-request
// value the middleware stores on the request context.
type Resolver struct {
	store DomainStore
}

func NewResolver(store DomainStore) *Resolver {
	return &Resolver{store: store}
}

// NormalizeHost lowercases the hostname and strips any port suffix.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// Resolve returns the tenant bound to the hostname, or nil when the request
// must fall back to the public partition. A hostname bound to an inactive
// tenant behaves exactly like an unbound hostname.
func (r *Resolver) Resolve(ctx context.Context, host string) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Resolver.Resolve")
	defer span.Finish()
	tracing.TagComponentService(span)

	hostname := NormalizeHost(host)
	if hostname == "" {
		return nil, nil
	}
	span.SetTag("hostname", hostname)

	tenant, _, err := r.store.GetByHostname(ctx, hostname)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if tenant == nil || !tenant.Active {
		span.SetTag("resolved", false)
		return nil, nil
	}

	span.SetTag("resolved", true)
	tracing.TagTenant(span, tenant.Slug)
	return tenant, nil
}

// ResolveRequired resolves the hostname and fails with ErrTenantNotFound
// instead of falling back to the public partition.
func (r *Resolver) ResolveRequired(ctx context.Context, host string) (*models.Tenant, error) {
	tenant, err := r.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, er.ErrTenantNotFound
	}
	return tenant, nil
}
