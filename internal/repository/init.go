package repository

import (
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/database"
)

type Repositories struct {
	TenantRepository   TenantRepository
	DomainRepository   DomainRepository
	UserRepository     UserRepository
	EmployeeRepository EmployeeRepository
	TeamRepository     TeamRepository
	TitleRepository    TitleRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		// Public schema
		TenantRepository: NewTenantRepository(db),
		DomainRepository: NewDomainRepository(db),
		UserRepository:   NewUserRepository(db),
		// Tenant schemas, scoped per call through the execution context
		EmployeeRepository: NewEmployeeRepository(db),
		TeamRepository:     NewTeamRepository(db),
		TitleRepository:    NewTitleRepository(db),
	}
}

// MigrateDB creates the shared public-schema tables. Tenant schemas are
// migrated individually by the structure provisioner.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(database.PublicModels()...)
}
