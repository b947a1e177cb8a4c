package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChatTypePersonal = "personal"
	ChatTypeTeam     = "team"
	ChatTypeGroup    = "group"
	ChatTypeTask     = "task"
)

// Chat is a single message row. chat_type decides which of receiver_id,
// team_id or task_id is meaningful. Sender and receiver are polymorphic
// (admin, employee or company) so the role is stored as a string tag.
type Chat struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Message      string    `gorm:"not null" json:"message"`
	ChatType     string    `gorm:"not null;index" json:"chatType"`
	CompanyID    string    `gorm:"size:36;not null;index" json:"companyId"`
	SenderID     string    `gorm:"size:36;not null;index" json:"senderId"`
	SenderType   string    `gorm:"not null" json:"senderType"`
	ReceiverID   *string   `gorm:"size:36;index" json:"receiverId,omitempty"`
	ReceiverType *string   `json:"receiverType,omitempty"`
	TeamID       *string   `gorm:"size:36;index" json:"teamId,omitempty"`
	TaskID       *string   `gorm:"size:36;index" json:"taskId,omitempty"`
	IsRead       bool      `gorm:"default:false;index" json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Relations
	Company Company `json:"-"`
	Team    *Team   `json:"-"`
	Task    *Task   `json:"-"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ValidChatType reports whether t is one of the known chat types.
func ValidChatType(t string) bool {
	switch t {
	case ChatTypePersonal, ChatTypeTeam, ChatTypeGroup, ChatTypeTask:
		return true
	}
	return false
}
