package interfaces

import (
	"context"

	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/models"
)

// OwnerRecordCreator creates the initial owner employee record inside a
// freshly provisioned partition. Invoked once per successful provisioning,
// within the new partition's execution context and transaction.
type OwnerRecordCreator interface {
	CreateOwnerRecord(ctx context.Context, tx *gorm.DB, owner *models.User) (*models.Employee, error)
}
