package cron

import (
	"context"
	"sync"

	"github.com/opentracing/opentracing-go"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/workstackhq/workstack/config"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tracing"
)

const jobDomainAudit = "domain-audit"

// CronManager schedules the background jobs of the registry. Jobs never
// overlap themselves; a run still in flight makes the next tick a no-op.
type CronManager struct {
	cfg    *config.Config
	log    logger.Logger
	cron   *cronv3.Cron
	repos  *repository.Repositories
	jobIDs map[string]cronv3.EntryID

	auditMutex sync.Mutex
}

func NewCronManager(cfg *config.Config, log logger.Logger, repos *repository.Repositories) *CronManager {
	return &CronManager{
		cfg:    cfg,
		log:    log,
		repos:  repos,
		jobIDs: make(map[string]cronv3.EntryID),
	}
}

func (cm *CronManager) Start() error {
	cm.cron = cronv3.New()

	id, err := cm.cron.AddFunc(cm.cfg.CronConfig.DomainAuditSchedule, func() {
		cm.RunDomainAudit(context.Background())
	})
	if err != nil {
		return err
	}
	cm.jobIDs[jobDomainAudit] = id

	cm.cron.Start()
	cm.log.Infof("cron manager started, domain audit schedule %q", cm.cfg.CronConfig.DomainAuditSchedule)
	return nil
}

func (cm *CronManager) Stop() {
	if cm.cron != nil {
		ctx := cm.cron.Stop()
		<-ctx.Done()
	}
	cm.log.Info("cron manager stopped")
}

// RunDomainAudit walks every tenant and verifies the domain invariants:
// exactly one primary domain, unparked while the tenant is active, parked
// while it is deactivated. Anomalies are logged, never auto-repaired. The
// returned count is the number of anomalies found.
func (cm *CronManager) RunDomainAudit(ctx context.Context) int {
	if !cm.auditMutex.TryLock() {
		cm.log.Warn("domain audit already running, skipping this tick")
		return 0
	}
	defer cm.auditMutex.Unlock()

	span, ctx := opentracing.StartSpanFromContext(ctx, "CronManager.RunDomainAudit")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	tenants, err := cm.repos.TenantRepository.List(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("domain audit failed to list tenants: %v", err)
		return 0
	}

	anomalies := 0
	for _, tenant := range tenants {
		domains, err := cm.repos.DomainRepository.ListByTenant(ctx, tenant.ID)
		if err != nil {
			tracing.TraceErr(span, err)
			cm.log.Errorf("domain audit failed to list domains for tenant %s: %v", tenant.ID, err)
			continue
		}

		primaries := 0
		for _, domain := range domains {
			if domain.IsPrimary {
				primaries++
				if tenant.Active && domain.Parked() {
					anomalies++
					cm.log.Warnf("domain audit: active tenant %s has parked primary hostname %s", tenant.Slug, domain.Hostname)
				}
				if !tenant.Active && !domain.Parked() {
					anomalies++
					cm.log.Warnf("domain audit: deactivated tenant %s still holds live hostname %s", tenant.Slug, domain.Hostname)
				}
			}
		}
		if primaries != 1 {
			anomalies++
			cm.log.Warnf("domain audit: tenant %s has %d primary domains", tenant.Slug, primaries)
		}
	}

	span.LogKV("tenants", len(tenants), "anomalies", anomalies)
	if anomalies > 0 {
		cm.log.Warnf("domain audit finished: %d anomalies across %d tenants", anomalies, len(tenants))
	} else {
		cm.log.Infof("domain audit finished: %d tenants clean", len(tenants))
	}
	return anomalies
}
