package interfaces

import "context"

// StructureProvisioner applies pending structural changes to the physical
// partition identified by schema. Implementations must be idempotent so a
// retried or rolled-back provisioning can call it again safely.
type StructureProvisioner interface {
	ApplyStructure(ctx context.Context, schema string) error
}
