package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team groups admins and employees inside one company for shared tasks and
// team chat.
type Team struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description,omitempty"`
	CompanyID   string    `gorm:"size:36;not null;index" json:"companyId"`
	AdminID     string    `gorm:"size:36;not null;index" json:"adminId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Company Company      `json:"-"`
	Admin   Admin        `json:"-"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Tasks   []Task       `gorm:"foreignKey:TeamID" json:"tasks,omitempty"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TeamMember references either an admin or an employee, never both. The
// exactly-one rule is enforced in BeforeSave rather than left to convention.
type TeamMember struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID     string    `gorm:"size:36;not null;index" json:"teamId"`
	AdminID    *string   `gorm:"size:36;index" json:"adminId,omitempty"`
	EmployeeID *string   `gorm:"size:36;index" json:"employeeId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`

	// Relations
	Team     Team      `json:"-"`
	Admin    *Admin    `json:"admin,omitempty"`
	Employee *Employee `json:"employee,omitempty"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *TeamMember) BeforeSave(tx *gorm.DB) error {
	if (m.AdminID == nil) == (m.EmployeeID == nil) {
		return fmt.Errorf("team member must reference exactly one of admin or employee")
	}
	return nil
}
