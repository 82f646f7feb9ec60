package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/utils"
)

// Title lives in the tenant schema.
type Title struct {
	ID         string  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name       string  `gorm:"column:name;type:varchar(255);uniqueIndex;not null" json:"name"`
	Active     bool    `gorm:"column:active;type:boolean;not null;default:true" json:"active"`
	Attributes JSONMap `gorm:"column:attributes;type:jsonb" json:"attributes"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Title) TableName() string {
	return "titles"
}

func (t *Title) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("titl", 12)
	}
	return nil
}
