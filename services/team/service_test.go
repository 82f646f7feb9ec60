package team

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

func TestCreate_WithParent(t *testing.T) {
	svc, ctx := newTestService(t)

	root, err := svc.Create(ctx, "Engineering", "builds things", nil)
	require.NoError(t, err)
	require.NotEmpty(t, root.ID)

	child, err := svc.Create(ctx, "Platform", "", &root.ID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)
}

func TestCreate_UnknownParent(t *testing.T) {
	svc, ctx := newTestService(t)

	missing := "team_missing"
	_, err := svc.Create(ctx, "Platform", "", &missing)
	assert.ErrorIs(t, err, er.ErrTeamNotFound)
}

func TestUpdateAndArchive(t *testing.T) {
	svc, ctx := newTestService(t)

	team, err := svc.Create(ctx, "Engineering", "", nil)
	require.NoError(t, err)

	name := "Product Engineering"
	updated, err := svc.Update(ctx, team.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Product Engineering", updated.Name)

	require.NoError(t, svc.Archive(ctx, team.ID))
	archived, err := svc.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	err = svc.Archive(ctx, "team_missing")
	assert.ErrorIs(t, err, er.ErrTeamNotFound)
}
