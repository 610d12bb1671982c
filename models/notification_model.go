package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationOutbox rows are committed in the same transaction as the state
// transition that caused them. The processor binary delivers them after
// commit; delivery failure never affects the committed transition.
type NotificationOutbox struct {
	gorm.Model
	EventType     string       `json:"event_type"`
	ReferenceType string       `json:"reference_type"`
	ReferenceID   uint         `json:"reference_id"`
	Recipient     string       `json:"recipient"`
	Subject       string       `json:"subject"`
	Payload       string       `json:"payload"`
	Status        OutboxStatus `json:"status" gorm:"default:'PENDING'"`
	Attempts      int          `json:"attempts" gorm:"default:0"`
	LastError     string       `json:"last_error"`
	SentAt        *time.Time   `json:"sent_at" gorm:"default:null"`
}
