package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses and priorities. Status transitions are deliberately
// unordered: any status may be patched to any other.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task is created by an admin and optionally assigned to an employee and/or a
// team of the same company.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `gorm:"default:'pending';index" json:"status"`
	Priority    string     `gorm:"default:'medium';index" json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CompanyID   string     `gorm:"size:36;not null;index" json:"companyId"`
	AdminID     string     `gorm:"size:36;not null;index" json:"adminId"`
	EmployeeID  *string    `gorm:"size:36;index" json:"employeeId,omitempty"`
	TeamID      *string    `gorm:"size:36;index" json:"teamId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relations
	Company  Company   `json:"-"`
	Admin    Admin     `json:"admin,omitempty"`
	Employee *Employee `json:"employee,omitempty"`
	Team     *Team     `json:"team,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ValidTaskPriority reports whether p is one of the known task priorities.
func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}
