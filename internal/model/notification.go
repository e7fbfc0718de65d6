package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationAction is a single action button rendered on a notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// NotificationPayload is the opaque document shown to the user. The Tag
// field doubles as the platform de-duplication key: two renders with the
// same tag on the same device coalesce into one visible notification.
type NotificationPayload struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon,omitempty"`
	Badge              string               `json:"badge,omitempty"`
	Tag                string               `json:"tag"`
	RequireInteraction bool                 `json:"requireInteraction,omitempty"`
	Data               map[string]any       `json:"data,omitempty"`
	Actions            []NotificationAction `json:"actions,omitempty"`
}

// NotificationRecord is a durable pending notification addressed to a user,
// not to a device. Fan-out to devices happens at render time.
type NotificationRecord struct {
	ID          string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string              `gorm:"type:varchar(36);not null;index:idx_notifications_user_delivered" json:"user_id"`
	Payload     NotificationPayload `gorm:"serializer:json;not null" json:"payload"`
	IsDelivered bool                `gorm:"not null;default:false;index:idx_notifications_user_delivered" json:"is_delivered"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt   time.Time           `gorm:"not null;index" json:"created_at"`
}

func (n *NotificationRecord) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
