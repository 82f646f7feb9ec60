package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/workstackhq/workstack/internal/database"
)

// setupTestDB opens an in-memory database with every table migrated. sqlite
// has a single flat namespace, so public and tenant tables coexist; the
// schema scoping statements are no-ops on this dialect.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(database.PublicModels()...))
	require.NoError(t, db.AutoMigrate(database.TenantModels()...))

	return db
}
