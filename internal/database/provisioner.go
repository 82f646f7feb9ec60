package database

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tracing"
)

// TenantModels are the tables created inside every tenant schema.
func TenantModels() []interface{} {
	return []interface{}{
		&models.Employee{},
		&models.Team{},
		&models.Title{},
	}
}

// PublicModels are the shared routing and identity tables in the public
// schema.
func PublicModels() []interface{} {
	return []interface{}{
		&models.Tenant{},
		&models.TenantDomain{},
		&models.User{},
	}
}

// SchemaProvisioner creates tenant schemas and applies pending structural
// changes to them. Both steps are idempotent, so a provisioning retry after
// a rollback leaves nothing to clean up.
type SchemaProvisioner struct {
	db *gorm.DB
}

func NewSchemaProvisioner(db *gorm.DB) *SchemaProvisioner {
	return &SchemaProvisioner{db: db}
}

func (p *SchemaProvisioner) ApplyStructure(ctx context.Context, schema string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SchemaProvisioner.ApplyStructure")
	defer span.Finish()
	tracing.TagSchema(span, schema)

	if !ValidSchemaName(schema) {
		return errors.Wrap(ErrInvalidSchemaName, schema)
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() != "postgres" {
			// Flat namespace; just make sure the tenant tables exist.
			return tx.AutoMigrate(TenantModels()...)
		}
		if err := tx.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error; err != nil {
			return errors.Wrap(err, "create schema")
		}
		if err := tx.Exec(`SET LOCAL search_path TO "` + schema + `"`).Error; err != nil {
			return errors.Wrap(err, "set search_path")
		}
		return tx.AutoMigrate(TenantModels()...)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
