package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/enum"
	er "github.com/workstackhq/workstack/internal/errors"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tenancy"
)

func tenantCtx(slug string) context.Context {
	return tenancy.WithTenant(context.Background(), &models.Tenant{ID: "tnnt_" + slug, Slug: slug, Active: true})
}

func TestEmployeeCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := tenantCtx("acme")

	employee := &models.Employee{
		UserID:    "user-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      enum.EmployeeRoleOwner,
		Active:    true,
	}
	require.NoError(t, repo.Create(ctx, employee))
	assert.NotEmpty(t, employee.ID)

	found, err := repo.GetByID(ctx, employee.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ada", found.FirstName)

	byUser, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, byUser)
	assert.Equal(t, employee.ID, byUser.ID)
}

func TestEmployeeCreate_DuplicateUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := tenantCtx("acme")

	require.NoError(t, repo.Create(ctx, &models.Employee{UserID: "user-1", FirstName: "Ada", Active: true}))

	err := repo.Create(ctx, &models.Employee{UserID: "user-1", FirstName: "Grace", Active: true})
	assert.ErrorIs(t, err, er.ErrUserAlreadyExists)
}

func TestEmployeeList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := tenantCtx("acme")

	require.NoError(t, repo.Create(ctx, &models.Employee{UserID: "user-1", FirstName: "Ada", Active: true}))
	require.NoError(t, repo.Create(ctx, &models.Employee{UserID: "user-2", FirstName: "Grace", Active: true}))

	employees, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 2)
}

func TestEmployeeWithTx_RollbackLeavesNothing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := tenantCtx("acme")

	err := db.Transaction(func(tx *gorm.DB) error {
		bound := repo.WithTx(tx)
		if err := bound.Create(ctx, &models.Employee{UserID: "user-1", FirstName: "Ada", Active: true}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	employees, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}
