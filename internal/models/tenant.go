package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/utils"
)

// Tenant represents one customer company. The slug doubles as the physical
// schema name and is immutable once assigned; rows are never reused for a
// different tenant even after deactivation.
type Tenant struct {
	ID          string  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Slug        string  `gorm:"column:slug;type:varchar(63);uniqueIndex;not null" json:"slug"`
	Name        string  `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string  `gorm:"column:description;type:text" json:"description"`
	OwnerUserID string  `gorm:"column:owner_user_id;type:varchar(50);uniqueIndex;not null" json:"ownerUserId"`
	Active      bool    `gorm:"column:active;type:boolean;not null;default:true" json:"active"`
	Attributes  JSONMap `gorm:"column:attributes;type:jsonb" json:"attributes"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`

	Domains []TenantDomain `gorm:"foreignKey:TenantID" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("tnnt", 16)
	}
	return nil
}

// SchemaName is the postgres schema holding this tenant's partitioned data.
func (t *Tenant) SchemaName() string {
	return t.Slug
}
