package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee belongs to one company and optionally to the admin that created it.
// WorkID is an optional badge number, unique within a company only.
type Employee struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	WorkID    *string   `gorm:"uniqueIndex:idx_employees_company_work" json:"workId,omitempty"`
	CompanyID string    `gorm:"size:36;not null;index;uniqueIndex:idx_employees_company_work" json:"companyId"`
	AdminID   *string   `gorm:"size:36;index" json:"adminId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Company Company `json:"-"`
	Admin   *Admin  `json:"-"`
	Tasks   []Task  `gorm:"foreignKey:EmployeeID" json:"tasks,omitempty"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
