package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User lives in the public schema and is shared across tenants. A user is
// bound to at most one tenant; the owner binding is assigned at provisioning
// and never reassigned.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"column:first_name;type:varchar(255)" json:"firstName"`
	LastName  string    `gorm:"column:last_name;type:varchar(255)" json:"lastName"`
	TenantID  *string   `gorm:"column:tenant_id;type:varchar(50);index" json:"tenantId,omitempty"`
	IsAdmin   bool      `gorm:"column:is_admin;type:boolean;not null;default:false" json:"isAdmin"`
	Active    bool      `gorm:"column:active;type:boolean;not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
