package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/interfaces"
	"github.com/workstackhq/workstack/internal/database"
	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tenancy"
	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/internal/utils"
)

const (
	EventTenantProvisioned = "tenant.provisioned"
	EventTenantDeactivated = "tenant.deactivated"
	EventTenantReactivated = "tenant.reactivated"
)

// Service owns the tenant lifecycle: Provisioning -> Active <-> Deactivated.
// Every transition is a single transaction over the tenant, domain and user
// rows; a partial failure leaves the registry in its prior state.
type Service struct {
	db          *gorm.DB
	repos       *repository.Repositories
	provisioner interfaces.StructureProvisioner
	ownerRecord interfaces.OwnerRecordCreator
	events      interfaces.EventPublisher
	log         logger.Logger
	baseDomain  string
}

func NewService(
	db *gorm.DB,
	repos *repository.Repositories,
	provisioner interfaces.StructureProvisioner,
	ownerRecord interfaces.OwnerRecordCreator,
	events interfaces.EventPublisher,
	log logger.Logger,
	baseDomain string,
) *Service {
	return &Service{
		db:          db,
		repos:       repos,
		provisioner: provisioner,
		ownerRecord: ownerRecord,
		events:      events,
		log:         log,
		baseDomain:  baseDomain,
	}
}

type ProvisionRequest struct {
	Name        string
	Slug        string
	Description string
	OwnerUserID string
	Attributes  models.JSONMap
}

// Provision creates the tenant, its primary domain and its physical
// partition, binds the owner and creates the owner's employee record, all
// or nothing. Concurrent calls for the same slug are serialized by the
// unique constraint; the loser gets ErrTenantAlreadyExists.
func (s *Service) Provision(ctx context.Context, req ProvisionRequest) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantService.Provision")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagTenant(span, req.Slug)

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == tenancy.PublicSchema || !database.ValidSchemaName(slug) {
		return nil, errors.Wrapf(database.ErrInvalidSchemaName, "slug %q", req.Slug)
	}

	owner, err := s.repos.UserRepository.GetByID(ctx, req.OwnerUserID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if owner == nil {
		return nil, er.ErrUserNotFound
	}

	// Friendly pre-checks; the unique constraints remain the authority
	// under concurrency.
	if existing, err := s.repos.TenantRepository.GetBySlug(ctx, slug); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	} else if existing != nil {
		return nil, er.ErrTenantAlreadyExists
	}
	if existing, err := s.repos.TenantRepository.GetByOwner(ctx, owner.ID.String()); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	} else if existing != nil {
		return nil, er.ErrOwnerAlreadyHasTenant
	}

	tenant := &models.Tenant{
		Slug:        slug,
		Name:        req.Name,
		Description: req.Description,
		OwnerUserID: owner.ID.String(),
		Active:      true,
		Attributes:  req.Attributes,
	}
	domain := &models.TenantDomain{
		Hostname:  s.PrimaryHostname(slug),
		IsPrimary: true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.TenantRepository.WithTx(tx).CreateWithDomain(ctx, tenant, domain); err != nil {
			return err
		}

		// The structural change is external but synchronous; if it fails or
		// times out, this transaction rolls back and no tenant or domain
		// row survives. The collaborator is idempotent, so a retry after a
		// partial schema creation is safe.
		if err := s.provisioner.ApplyStructure(ctx, slug); err != nil {
			return errors.Wrap(er.ErrStructuralProvisioningFailed, err.Error())
		}

		if err := s.repos.UserRepository.WithTx(tx).BindToTenant(ctx, owner.ID.String(), tenant.ID, true); err != nil {
			return err
		}

		// Owner employee record, created inside the new partition's context.
		if err := database.ScopeTx(tx, slug); err != nil {
			return err
		}
		return tenancy.RunWithTenant(ctx, tenant, func(ctx context.Context) error {
			_, err := s.ownerRecord.CreateOwnerRecord(ctx, tx, owner)
			return err
		})
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Infof("provisioned tenant %s (%s)", tenant.Slug, tenant.ID)
	s.publish(ctx, interfaces.TenantEvent{
		Event:    EventTenantProvisioned,
		TenantID: tenant.ID,
		Slug:     tenant.Slug,
		Hostname: domain.Hostname,
	})

	return tenant, nil
}

// Deactivate releases the tenant's hostname and suspends its users without
// touching partition data. Calling it on an already-inactive tenant is a
// no-op.
func (s *Service) Deactivate(ctx context.Context, tenantID string) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantService.Deactivate")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, tenantID)

	tenant, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if !tenant.Active {
		return tenant, nil
	}

	var parked string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		domains := s.repos.DomainRepository.WithTx(tx)

		primary, err := domains.GetPrimary(ctx, tenant.ID)
		if err != nil {
			return err
		}
		if primary == nil {
			return errors.Wrap(er.ErrInconsistentLifecycleState, "tenant has no primary domain")
		}

		// The release token is ordered (timestamp) and owner-scoped, so two
		// deactivations can never collide on the rewritten name.
		parked = primary.Hostname
		released := fmt.Sprintf("%d-%s-%s", utils.Now().Unix(), tenant.OwnerUserID, primary.Hostname)
		if err := domains.Rename(ctx, primary.ID, released, parked); err != nil {
			return err
		}

		if err := s.repos.UserRepository.WithTx(tx).SetActiveForTenant(ctx, tenant.ID, false); err != nil {
			return err
		}

		tenant.Active = false
		return s.repos.TenantRepository.WithTx(tx).Save(ctx, tenant)
	})
	if err != nil {
		tenant.Active = true
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Infof("deactivated tenant %s, released hostname %s", tenant.Slug, parked)
	s.publish(ctx, interfaces.TenantEvent{
		Event:    EventTenantDeactivated,
		TenantID: tenant.ID,
		Slug:     tenant.Slug,
		Hostname: parked,
	})

	return tenant, nil
}

// Reactivate restores the parked hostname and the tenant's users. If
// another active tenant claimed the hostname in the meantime the operation
// fails with ErrDomainCollision and the tenant stays deactivated.
func (s *Service) Reactivate(ctx context.Context, tenantID string) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantService.Reactivate")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, tenantID)

	tenant, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if tenant.Active {
		return tenant, nil
	}

	var restored string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		domains := s.repos.DomainRepository.WithTx(tx)

		primary, err := domains.GetPrimary(ctx, tenant.ID)
		if err != nil {
			return err
		}
		if primary == nil || !primary.Parked() {
			return errors.Wrap(er.ErrInconsistentLifecycleState, "tenant has no parked hostname")
		}

		restored = primary.ParkedHostname
		if err := domains.Rename(ctx, primary.ID, restored, ""); err != nil {
			return err
		}

		if err := s.repos.UserRepository.WithTx(tx).SetActiveForTenant(ctx, tenant.ID, true); err != nil {
			return err
		}

		tenant.Active = true
		return s.repos.TenantRepository.WithTx(tx).Save(ctx, tenant)
	})
	if err != nil {
		tenant.Active = false
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Infof("reactivated tenant %s on hostname %s", tenant.Slug, restored)
	s.publish(ctx, interfaces.TenantEvent{
		Event:    EventTenantReactivated,
		TenantID: tenant.ID,
		Slug:     tenant.Slug,
		Hostname: restored,
	})

	return tenant, nil
}

// UpdateRequest carries the only tenant fields an update may touch. Slug
// and owner are identity and have no way in.
type UpdateRequest struct {
	Name        *string
	Description *string
	Attributes  models.JSONMap
}

func (s *Service) Update(ctx context.Context, tenantID string, req UpdateRequest) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantService.Update")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, tenantID)

	tenant, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.Description != nil {
		tenant.Description = *req.Description
	}
	if req.Attributes != nil {
		tenant.Attributes = req.Attributes
	}

	if err := s.repos.TenantRepository.Save(ctx, tenant); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return tenant, nil
}

// HardDelete removes the tenant and domain rows permanently. Only allowed
// on a deactivated tenant; the schema and its data are still retained.
func (s *Service) HardDelete(ctx context.Context, tenantID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantService.HardDelete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, tenantID)

	tenant, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if tenant.Active {
		return errors.Wrap(er.ErrInconsistentLifecycleState, "deactivate tenant before hard delete")
	}

	if err := s.repos.TenantRepository.HardDelete(ctx, tenant.ID); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	s.log.Warnf("hard deleted tenant %s (%s)", tenant.Slug, tenant.ID)
	return nil
}

func (s *Service) GetByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	return s.repos.TenantRepository.GetByID(ctx, tenantID)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return s.repos.TenantRepository.GetBySlug(ctx, slug)
}

func (s *Service) ListActive(ctx context.Context) ([]models.Tenant, error) {
	return s.repos.TenantRepository.ListActive(ctx)
}

// AddDomain binds an extra, non-primary hostname to the tenant.
func (s *Service) AddDomain(ctx context.Context, tenantID, hostname string) (*models.TenantDomain, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantService.AddDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, tenantID)

	tenant, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	domain := &models.TenantDomain{
		TenantID:  tenant.ID,
		Hostname:  tenancy.NormalizeHost(hostname),
		IsPrimary: false,
	}
	if err := s.repos.DomainRepository.Add(ctx, domain); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return domain, nil
}

// RemoveDomain detaches a non-primary hostname.
func (s *Service) RemoveDomain(ctx context.Context, tenantID, domainID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TenantService.RemoveDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, domainID)

	if err := s.repos.DomainRepository.Remove(ctx, tenantID, domainID); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

// PrimaryHostname is the hostname assigned to a slug at provisioning time.
func (s *Service) PrimaryHostname(slug string) string {
	return slug + "." + s.baseDomain
}

func (s *Service) requireTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	tenant, err := s.repos.TenantRepository.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, er.ErrTenantNotFound
	}
	return tenant, nil
}

// publish is best-effort: lifecycle events go out after commit and a broker
// outage must not fail the operation itself.
func (s *Service) publish(ctx context.Context, event interfaces.TenantEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTenantEvent(ctx, event); err != nil {
		s.log.Warnf("failed to publish %s for tenant %s: %v", event.Event, event.Slug, err)
	}
}
