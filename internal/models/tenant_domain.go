package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/utils"
)

// TenantDomain binds a hostname to exactly one tenant. The unique index on
// hostname is the routing authority: at most one row resolves a literal
// hostname at any time. When a tenant is deactivated the original hostname
// moves to ParkedHostname and Hostname is rewritten with a release token,
// freeing the name without dropping the row.
type TenantDomain struct {
	ID             string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	TenantID       string `gorm:"column:tenant_id;type:varchar(50);index;not null" json:"tenantId"`
	Hostname       string `gorm:"column:hostname;type:varchar(255);uniqueIndex;not null" json:"hostname"`
	ParkedHostname string `gorm:"column:parked_hostname;type:varchar(255)" json:"-"`
	IsPrimary      bool   `gorm:"column:is_primary;type:boolean;not null;default:false" json:"isPrimary"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (TenantDomain) TableName() string {
	return "tenant_domains"
}

func (d *TenantDomain) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = utils.GenerateNanoIDWithPrefix("tdom", 16)
	}
	return nil
}

// Parked reports whether the domain currently holds a released hostname.
func (d *TenantDomain) Parked() bool {
	return d.ParkedHostname != ""
}
