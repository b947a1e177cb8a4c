package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin belongs to exactly one company and owns the employees and tasks it
// creates. Emails are unique across all companies, not per tenant.
type Admin struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CompanyID string    `gorm:"size:36;not null;index" json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Company   Company    `json:"-"`
	Employees []Employee `gorm:"foreignKey:AdminID" json:"employees,omitempty"`
	Tasks     []Task     `gorm:"foreignKey:AdminID" json:"tasks,omitempty"`
	Teams     []Team     `gorm:"foreignKey:AdminID" json:"teams,omitempty"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
