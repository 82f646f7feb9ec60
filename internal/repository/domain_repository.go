package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/internal/utils"
)

type DomainRepository interface {
	WithTx(tx *gorm.DB) DomainRepository
	GetByID(ctx context.Context, id string) (*models.TenantDomain, error)
	GetPrimary(ctx context.Context, tenantID string) (*models.TenantDomain, error)
	ListByTenant(ctx context.Context, tenantID string) ([]models.TenantDomain, error)
	Add(ctx context.Context, domain *models.TenantDomain) error
	Remove(ctx context.Context, tenantID, domainID string) error
	Rename(ctx context.Context, domainID, newHostname, parkedHostname string) error
}

type domainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{db: db}
}

func (r *domainRepository) WithTx(tx *gorm.DB) DomainRepository {
	return &domainRepository{db: tx}
}

func (r *domainRepository) GetByID(ctx context.Context, id string) (*models.TenantDomain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var domain models.TenantDomain
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &domain, nil
}

func (r *domainRepository) GetPrimary(ctx context.Context, tenantID string) (*models.TenantDomain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetPrimary")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var domain models.TenantDomain
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_primary = ?", tenantID, true).
		First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &domain, nil
}

func (r *domainRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.TenantDomain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainRepository.ListByTenant")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var domains []models.TenantDomain
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("is_primary desc, created_at").
		Find(&domains).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return domains, nil
}

// Add attaches an additional hostname to a tenant. Only one primary domain
// may exist per tenant.
func (r *domainRepository) Add(ctx context.Context, domain *models.TenantDomain) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainRepository.Add")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("hostname", domain.Hostname)

	err := r.db.WithContext(ctx).Create(domain).Error
	if err != nil {
		if isDuplicateKey(err) {
			return er.ErrDomainCollision
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *domainRepository) Remove(ctx context.Context, tenantID, domainID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainRepository.Remove")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, domainID)

	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_primary = ?", domainID, tenantID, false).
		Delete(&models.TenantDomain{})
	if result.Error != nil {
		tracing.TraceErr(span, errors.Wrap(result.Error, "db error"))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return er.ErrDomainNotFound
	}
	return nil
}

// Rename atomically rewrites the live hostname and records the parked one.
// If another active domain already holds the target hostname the unique
// index rejects the update and the caller gets ErrDomainCollision.
func (r *domainRepository) Rename(ctx context.Context, domainID, newHostname, parkedHostname string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainRepository.Rename")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, domainID)
	span.SetTag("hostname", newHostname)

	result := r.db.WithContext(ctx).
		Model(&models.TenantDomain{}).
		Where("id = ?", domainID).
		Updates(map[string]interface{}{
			"hostname":        newHostname,
			"parked_hostname": parkedHostname,
			"updated_at":      utils.Now(),
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return er.ErrDomainCollision
		}
		tracing.TraceErr(span, errors.Wrap(result.Error, "db error"))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return er.ErrDomainNotFound
	}
	return nil
}
