package models

import (
	"time"
)

// Webhook event types a user can subscribe an endpoint to.
const (
	WebhookEventDocketAlert           = 1
	WebhookEventSearchAlert           = 2
	WebhookEventRecapFetch            = 3
	WebhookEventOldDocketAlertsReport = 4
)

// Webhook is a user-registered HTTP endpoint for a single event type.
// Delivery itself happens elsewhere; this service only manages registrations.
type Webhook struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `json:"user_id" gorm:"uniqueIndex:idx_webhooks_user_event;size:128;not null"`

	EventType int    `json:"event_type" gorm:"uniqueIndex:idx_webhooks_user_event;not null"`
	URL       string `json:"url" gorm:"not null"`
	Enabled   bool   `json:"enabled" gorm:"default:true"`
}

// TableName sets the explicit table name.
func (Webhook) TableName() string {
	return "webhooks"
}

// ValidEventType reports whether t is one of the known webhook event types.
func ValidEventType(t int) bool {
	return t >= WebhookEventDocketAlert && t <= WebhookEventOldDocketAlertsReport
}
