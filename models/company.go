package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the root tenant. Every other row in the system hangs off a
// company_id and must never be visible to another company's sessions.
type Company struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Admins    []Admin    `gorm:"foreignKey:CompanyID" json:"admins,omitempty"`
	Employees []Employee `gorm:"foreignKey:CompanyID" json:"employees,omitempty"`
	Teams     []Team     `gorm:"foreignKey:CompanyID" json:"teams,omitempty"`
	Tasks     []Task     `gorm:"foreignKey:CompanyID" json:"tasks,omitempty"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
