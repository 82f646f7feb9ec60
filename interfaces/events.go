package interfaces

import "context"

// TenantEvent is a lifecycle notification published after a tenant
// transition commits.
type TenantEvent struct {
	Event    string `json:"event"`
	TenantID string `json:"tenantId"`
	Slug     string `json:"slug"`
	Hostname string `json:"hostname,omitempty"`
}

type EventPublisher interface {
	PublishTenantEvent(ctx context.Context, event TenantEvent) error
	Close() error
}
