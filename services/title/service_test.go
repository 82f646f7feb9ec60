package title

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/workstackhq/workstack/internal/database"
	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/repository"
	"github.com/workstackhq/workstack/internal/tenancy"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.TenantModels()...))

	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()

	svc := NewService(repository.InitRepositories(db), appLogger)
	ctx := tenancy.WithTenant(context.Background(), &models.Tenant{ID: "tnnt_1", Slug: "acme", Active: true})
	return svc, ctx
}

func TestCreateAndList(t *testing.T) {
	svc, ctx := newTestService(t)

	created, err := svc.Create(ctx, "Software Engineer")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Active)

	_, err = svc.Create(ctx, "Product Manager")
	require.NoError(t, err)

	titles, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, "Product Manager", titles[0].Name)
}

func TestCreate_NameTaken(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, "Software Engineer")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Software Engineer")
	assert.ErrorIs(t, err, er.ErrNameTaken)
}

func TestRename(t *testing.T) {
	svc, ctx := newTestService(t)

	created, err := svc.Create(ctx, "Software Engineer")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, created.ID, "Senior Software Engineer")
	require.NoError(t, err)
	assert.Equal(t, "Senior Software Engineer", renamed.Name)

	_, err = svc.Rename(ctx, "ttl_missing", "Staff Engineer")
	assert.ErrorIs(t, err, er.ErrTitleNotFound)
}

func TestRename_NameTaken(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, "Software Engineer")
	require.NoError(t, err)
	other, err := svc.Create(ctx, "Product Manager")
	require.NoError(t, err)

	_, err = svc.Rename(ctx, other.ID, "Software Engineer")
	assert.ErrorIs(t, err, er.ErrNameTaken)
}

func TestArchive(t *testing.T) {
	svc, ctx := newTestService(t)

	created, err := svc.Create(ctx, "Software Engineer")
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, created.ID))
	archived, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	err = svc.Archive(ctx, "ttl_missing")
	assert.ErrorIs(t, err, er.ErrTitleNotFound)
}
