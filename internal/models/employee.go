package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/workstackhq/workstack/internal/enum"
	"github.com/workstackhq/workstack/internal/utils"
)

// Employee lives in the tenant schema. The owner employee is created during
// provisioning and can never be deleted.
type Employee struct {
	ID        string            `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	UserID    string            `gorm:"column:user_id;type:varchar(50);uniqueIndex;not null" json:"userId"`
	FirstName string            `gorm:"column:first_name;type:varchar(255);not null" json:"firstName"`
	LastName  string            `gorm:"column:last_name;type:varchar(255);not null" json:"lastName"`
	Role      enum.EmployeeRole `gorm:"column:role;type:varchar(20);not null;default:'employee'" json:"role"`
	ManagerID *string           `gorm:"column:manager_id;type:varchar(50);index" json:"managerId,omitempty"`

	EmploymentDate  *time.Time        `gorm:"column:employment_date;type:date" json:"employmentDate,omitempty"`
	TerminationDate *time.Time        `gorm:"column:termination_date;type:date" json:"terminationDate,omitempty"`
	ContractType    enum.ContractType `gorm:"column:contract_type;type:varchar(20);not null;default:'indefinite'" json:"contractType"`
	ContractEndDate *time.Time        `gorm:"column:contract_end_date;type:date" json:"contractEndDate,omitempty"`

	IdentificationNumber string `gorm:"column:identification_number;type:varchar(255)" json:"identificationNumber"`
	PhoneNumber          string `gorm:"column:phone_number;type:varchar(255)" json:"phoneNumber"`
	BusinessPhoneNumber  string `gorm:"column:business_phone_number;type:varchar(255)" json:"businessPhoneNumber"`

	// Storage key of the profile photo, relative to the tenant storage prefix.
	PhotoKey string `gorm:"column:photo_key;type:varchar(512)" json:"photoKey"`

	Active     bool    `gorm:"column:active;type:boolean;not null;default:true" json:"active"`
	Attributes JSONMap `gorm:"column:attributes;type:jsonb" json:"attributes"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("empl", 16)
	}
	return nil
}
