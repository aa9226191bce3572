package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusFailed     Status = "failed"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusProcessing, StatusPaid, StatusFailed:
		return Status(value), true
	}
	return "", false
}

// Payout is a batch of published bookings paid out to one writer.
type Payout struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id,string"`
	WriterID      snowflake.ID `gorm:"not null;index" json:"writer_id,string"`
	Reference     string       `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	AmountCents   int64        `gorm:"not null" json:"amount_cents"`
	Currency      string       `gorm:"size:8;not null;default:usd" json:"currency"`
	Status        Status       `gorm:"size:32;not null;default:processing" json:"status"`
	FailureReason string       `json:"failure_reason,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
	FailedAt      *time.Time   `json:"failed_at,omitempty"`
}

// PayoutBooking claims one booking for one payout. A booking is eligible
// again only when every payout claiming it has failed.
type PayoutBooking struct {
	PayoutID  snowflake.ID `gorm:"primaryKey" json:"payout_id,string"`
	BookingID snowflake.ID `gorm:"primaryKey;index" json:"booking_id,string"`
}

// Summary aggregates a writer's payout position.
type Summary struct {
	AvailableCents int64 `json:"available_cents"`
	PendingCents   int64 `json:"pending_cents"`
	TotalPaidCents int64 `json:"total_paid_cents"`
	EligibleCount  int64 `json:"eligible_count"`
}
