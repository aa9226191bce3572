package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord stores every accepted webhook delivery. The unique
// (provider, provider_event_id) pair is what makes replays harmless.
type EventRecord struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id,string"`
	Provider        string         `gorm:"size:64;not null;index:idx_payment_event_provider,unique" json:"provider"`
	ProviderEventID string         `gorm:"size:255;not null;index:idx_payment_event_provider,unique" json:"provider_event_id"`
	EventName       string         `gorm:"size:64;not null" json:"event_name"`
	Payload         datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (EventRecord) TableName() string {
	return "payment_events"
}

// Outcome classifies what a webhook delivery did.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// Result reports what the reconciler did with a delivery.
type Result struct {
	Outcome       Outcome `json:"outcome"`
	EventName     string  `json:"event_name,omitempty"`
	BookingStatus string  `json:"booking_status,omitempty"`
}
