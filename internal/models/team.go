package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/utils"
)

// Team lives in the tenant schema. Teams form a tree through ParentID.
type Team struct {
	ID          string  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	ParentID    *string `gorm:"column:parent_id;type:varchar(50);index" json:"parentId,omitempty"`
	Name        string  `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string  `gorm:"column:description;type:text" json:"description"`
	Active      bool    `gorm:"column:active;type:boolean;not null;default:true" json:"active"`
	Attributes  JSONMap `gorm:"column:attributes;type:jsonb" json:"attributes"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Team) TableName() string {
	return "teams"
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("team", 12)
	}
	return nil
}
