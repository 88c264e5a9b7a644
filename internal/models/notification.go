package models

import "time"

// NotificationType identifies what triggered a notification
type NotificationType string

const (
	NotificationTypeMention      NotificationType = "mention"
	NotificationTypeMemberJoined NotificationType = "member_joined"
	NotificationTypeTransfer     NotificationType = "transfer"
)

// Notification is an in-app notification for a user. Delivery over other
// channels is out of scope; rows are cleaned up after they are read.
type Notification struct {
	Base
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetID  string           `gorm:"type:uuid;not null" json:"budget_id"`
	Type      NotificationType `gorm:"not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	LinkURL   string           `json:"link_url,omitempty"`
	RelatedID string           `json:"related_id,omitempty"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}
