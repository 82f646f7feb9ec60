package database

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Schema names are tenant slugs, created from user input during
// provisioning. Anything that does not match here is rejected before it
// gets near a DDL statement.
var schemaNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

var ErrInvalidSchemaName = errors.New("invalid schema name")

func ValidSchemaName(schema string) bool {
	return schemaNameRe.MatchString(schema)
}

// ScopeTx pins the search_path of an open transaction to the given schema,
// with public as fallback for shared tables. SET LOCAL keeps the setting
// scoped to the transaction, so nothing leaks back into the connection
// pool. On non-postgres dialects (the sqlite test database has a single
// flat namespace) this is a no-op.
func ScopeTx(tx *gorm.DB, schema string) error {
	if !ValidSchemaName(schema) {
		return errors.Wrap(ErrInvalidSchemaName, schema)
	}
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec(`SET LOCAL search_path TO "` + schema + `", public`).Error; err != nil {
		return errors.Wrap(err, "set search_path")
	}
	return nil
}

// InSchema runs fn inside a transaction whose search_path is pinned to the
// given schema. This is how all partition-scoped data access reaches the
// right tenant tables.
func InSchema(ctx context.Context, db *gorm.DB, schema string, fn func(tx *gorm.DB) error) error {
	if !ValidSchemaName(schema) {
		return errors.Wrap(ErrInvalidSchemaName, schema)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ScopeTx(tx, schema); err != nil {
			return err
		}
		return fn(tx)
	})
}
