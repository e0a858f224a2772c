package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLevel classifies a site notice
type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationPromo   NotificationLevel = "promo"
	NotificationWarning NotificationLevel = "warning"
)

// Notification is an admin-managed site notice shown to customers while
// active and inside its optional start/end window.
type Notification struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	Title     string            `json:"title" db:"title"`
	Message   string            `json:"message" db:"message"`
	Level     NotificationLevel `json:"level" db:"level"`
	IsActive  bool              `json:"is_active" db:"is_active"`
	StartsAt  *time.Time        `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt    *time.Time        `json:"ends_at,omitempty" db:"ends_at"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// VisibleAt reports whether the notice should be shown at the given time.
func (n *Notification) VisibleAt(t time.Time) bool {
	if !n.IsActive {
		return false
	}
	if n.StartsAt != nil && t.Before(*n.StartsAt) {
		return false
	}
	if n.EndsAt != nil && t.After(*n.EndsAt) {
		return false
	}
	return true
}
