package repository

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique-constraint violation.
// Postgres errors arrive translated by gorm; the sqlite test dialect leaks
// the raw constraint message.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
