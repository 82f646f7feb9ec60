package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/workstackhq/workstack/internal/tenancy"
)

// ResolveStoragePath prefixes a relative object key with the current
// partition, read from the execution context at call time. Shared assets
// resolve under the public prefix.
func ResolveStoragePath(ctx context.Context, rel string) (string, error) {
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		return "", errors.New("empty storage path")
	}
	if strings.Contains(rel, "..") {
		return "", errors.Errorf("invalid storage path %q", rel)
	}
	return tenancy.SchemaFromContext(ctx) + "/" + rel, nil
}
