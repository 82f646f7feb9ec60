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

// TenantRepository is the registry of tenants and the single source of truth
// for routing decisions. All mutating operations are atomic; slug and
// hostname uniqueness is enforced by the database constraints, not by
// check-then-insert.
type TenantRepository interface {
	WithTx(tx *gorm.DB) TenantRepository
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByOwner(ctx context.Context, ownerUserID string) (*models.Tenant, error)
	GetByHostname(ctx context.Context, hostname string) (*models.Tenant, *models.TenantDomain, error)
	CreateWithDomain(ctx context.Context, tenant *models.Tenant, domain *models.TenantDomain) error
	Save(ctx context.Context, tenant *models.Tenant) error
	ListActive(ctx context.Context) ([]models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	HardDelete(ctx context.Context, id string) error
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) WithTx(tx *gorm.DB) TenantRepository {
	return &tenantRepository{db: tx}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var tenant models.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetBySlug")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, slug)

	var tenant models.Tenant
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByOwner(ctx context.Context, ownerUserID string) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetByOwner")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var tenant models.Tenant
	err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return &tenant, nil
}

// GetByHostname performs the exact-match routing lookup. Both return values
// are nil on a miss; the resolver decides whether a miss is an error.
func (r *tenantRepository) GetByHostname(ctx context.Context, hostname string) (*models.Tenant, *models.TenantDomain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.GetByHostname")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("hostname", hostname)

	var domain models.TenantDomain
	err := r.db.WithContext(ctx).Where("hostname = ?", hostname).First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, nil, err
	}

	var tenant models.Tenant
	err = r.db.WithContext(ctx).Where("id = ?", domain.TenantID).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Domain row without its tenant should not exist outside a
			// failed transaction; treat as a miss.
			return nil, nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, nil, err
	}

	return &tenant, &domain, nil
}

// CreateWithDomain inserts the tenant and its primary domain atomically.
// A slug or hostname collision surfaces as ErrTenantAlreadyExists /
// ErrDomainCollision and nothing is applied.
func (r *tenantRepository) CreateWithDomain(ctx context.Context, tenant *models.Tenant, domain *models.TenantDomain) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.CreateWithDomain")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant.Slug)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			if isDuplicateKey(err) {
				return er.ErrTenantAlreadyExists
			}
			return errors.Wrap(err, "create tenant")
		}

		domain.TenantID = tenant.ID
		if err := tx.Create(domain).Error; err != nil {
			if isDuplicateKey(err) {
				return er.ErrDomainCollision
			}
			return errors.Wrap(err, "create domain")
		}
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *tenantRepository) Save(ctx context.Context, tenant *models.Tenant) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant.Slug)

	tenant.UpdatedAt = utils.Now()
	err := r.db.WithContext(ctx).Save(tenant).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *tenantRepository) ListActive(ctx context.Context) ([]models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.ListActive")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var tenants []models.Tenant
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("created_at").Find(&tenants).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var tenants []models.Tenant
	err := r.db.WithContext(ctx).Order("created_at").Find(&tenants).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}
	return tenants, nil
}

// HardDelete removes the tenant and its domain rows. The schema itself is
// never dropped here; data retention outlives the registry entry.
func (r *tenantRepository) HardDelete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantRepository.HardDelete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", id).Delete(&models.TenantDomain{}).Error; err != nil {
			return errors.Wrap(err, "delete domains")
		}
		if err := tx.Where("id = ?", id).Delete(&models.Tenant{}).Error; err != nil {
			return errors.Wrap(err, "delete tenant")
		}
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
