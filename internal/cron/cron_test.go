package cron

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/workstackhq/workstack/config"
	"github.com/workstackhq/workstack/internal/database"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
)

func newAuditFixture(t *testing.T) (*CronManager, *repository.Repositories) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PublicModels()...))

	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()

	repos := repository.InitRepositories(db)
	cm := NewCronManager(&config.Config{}, appLogger, repos)
	return cm, repos
}

func seedTenant(t *testing.T, repos *repository.Repositories, slug, hostname, parked string, active bool) {
	t.Helper()
	tenant := &models.Tenant{Slug: slug, Name: slug, OwnerUserID: "owner-" + slug, Active: true}
	domain := &models.TenantDomain{Hostname: hostname, IsPrimary: true, ParkedHostname: parked}
	require.NoError(t, repos.TenantRepository.CreateWithDomain(context.Background(), tenant, domain))
	if !active {
		tenant.Active = false
		require.NoError(t, repos.TenantRepository.Save(context.Background(), tenant))
	}
}

func TestRunDomainAudit_CleanRegistry(t *testing.T) {
	cm, repos := newAuditFixture(t)
	seedTenant(t, repos, "acme", "acme.workstack.app", "", true)
	seedTenant(t, repos, "globex", "17000-u2-globex.workstack.app", "globex.workstack.app", false)

	assert.Zero(t, cm.RunDomainAudit(context.Background()))
}

func TestRunDomainAudit_FlagsAnomalies(t *testing.T) {
	cm, repos := newAuditFixture(t)

	// Active tenant stuck on a parked hostname.
	seedTenant(t, repos, "acme", "17000-u1-acme.workstack.app", "acme.workstack.app", true)
	// Deactivated tenant still holding a live hostname.
	seedTenant(t, repos, "globex", "globex.workstack.app", "", false)

	assert.Equal(t, 2, cm.RunDomainAudit(context.Background()))
}

func TestRunDomainAudit_FlagsMissingPrimary(t *testing.T) {
	cm, repos := newAuditFixture(t)
	ctx := context.Background()

	tenant := &models.Tenant{Slug: "acme", Name: "acme", OwnerUserID: "owner-acme", Active: true}
	domain := &models.TenantDomain{Hostname: "acme.workstack.app", IsPrimary: false}
	require.NoError(t, repos.TenantRepository.CreateWithDomain(ctx, tenant, domain))

	assert.Equal(t, 1, cm.RunDomainAudit(ctx))
}
