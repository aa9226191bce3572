package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Writer struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID          snowflake.ID `gorm:"not null;uniqueIndex" json:"user_id"`
	Slug            string       `gorm:"not null;uniqueIndex" json:"slug"`
	NewsletterName  string       `gorm:"not null" json:"newsletter_name"`
	NewsletterURL   string       `json:"newsletter_url,omitempty"`
	Description     string       `json:"description,omitempty"`
	SubscriberCount *int         `json:"subscriber_count,omitempty"`
	PricePerSlot    int64        `gorm:"not null" json:"price_per_slot"`
	Currency        string       `gorm:"not null;default:usd" json:"currency"`
	LeadTimeDays    int          `gorm:"not null;default:7" json:"lead_time_days"`
	SlotsPerWeek    int          `gorm:"not null;default:1" json:"slots_per_week"`
	AutoApprove     bool         `gorm:"not null;default:false" json:"auto_approve"`
	PlatformFeeBps  int          `gorm:"not null;default:1000" json:"platform_fee_bps"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type BlackoutDate struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	WriterID    snowflake.ID `gorm:"not null;index:idx_blackout_writer_date,unique" json:"writer_id"`
	BlockedDate time.Time    `gorm:"not null;type:date;index:idx_blackout_writer_date,unique" json:"blocked_date"`
	Reason      string       `json:"reason,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Stats aggregates a writer's booking pipeline. Published slots count as
// realized revenue, paid and approved slots as pending.
type Stats struct {
	TotalPublished      int64 `json:"total_published"`
	PendingBookings     int64 `json:"pending_bookings"`
	TotalRevenueCents   int64 `json:"total_revenue_cents"`
	PendingRevenueCents int64 `json:"pending_revenue_cents"`
}
