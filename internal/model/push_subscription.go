package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PushSubscription holds one browser push registration for a user. A user
// may hold many simultaneously-active subscriptions (one per device), but
// at most one row exists per (user_id, endpoint) pair.
type PushSubscription struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_subscriptions_user_endpoint" json:"user_id"`
	Endpoint  string    `gorm:"size:500;not null;uniqueIndex:idx_subscriptions_user_endpoint" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (p *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
