package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusPublished      Status = "published"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPendingPayment, StatusPaid, StatusApproved, StatusRejected,
		StatusPublished, StatusCancelled, StatusRefunded:
		return Status(value), true
	}
	return "", false
}

// transitions maps a target status to the source statuses it may be
// reached from. Any update outside this table is rejected.
var transitions = map[Status][]Status{
	StatusPaid:      {StatusPendingPayment},
	StatusApproved:  {StatusPaid},
	StatusRejected:  {StatusPaid, StatusApproved},
	StatusPublished: {StatusApproved},
	StatusCancelled: {StatusPendingPayment},
	StatusRefunded:  {StatusPaid, StatusApproved},
}

// AllowedSources returns the statuses a booking must currently hold for
// a transition into target to be legal.
func AllowedSources(target Status) []Status {
	return transitions[target]
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// Occupying reports whether a booking in this status still holds its
// slot. Rejected, cancelled and refunded bookings release capacity.
func (s Status) Occupying() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusRefunded:
		return false
	}
	return true
}

type Booking struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	WriterID  snowflake.ID `gorm:"not null;index:idx_bookings_writer_slot" json:"writer_id"`
	SponsorID snowflake.ID `gorm:"not null;index" json:"sponsor_id"`
	SlotDate  time.Time    `gorm:"not null;type:date;index:idx_bookings_writer_slot" json:"slot_date"`

	AdHeadline string `gorm:"not null" json:"ad_headline"`
	AdBody     string `gorm:"not null" json:"ad_body"`
	AdCTAText  string `gorm:"column:ad_cta_text" json:"ad_cta_text,omitempty"`
	AdCTAURL   string `gorm:"column:ad_cta_url;not null" json:"ad_cta_url"`
	AdImageURL string `gorm:"column:ad_image_url" json:"ad_image_url,omitempty"`

	Status Status `gorm:"not null;default:pending_payment" json:"status"`

	AmountCents       int64  `gorm:"not null" json:"amount_cents"`
	PlatformFeeCents  int64  `gorm:"not null" json:"platform_fee_cents"`
	WriterPayoutCents int64  `gorm:"not null" json:"writer_payout_cents"`
	Currency          string `gorm:"not null;default:usd" json:"currency"`

	CheckoutRef     string `gorm:"index" json:"-"`
	ProviderOrderID string `gorm:"index" json:"-"`

	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Detail is a booking joined with the writer and sponsor profiles it
// belongs to, for dashboard listings.
type Detail struct {
	Booking
	NewsletterName string `json:"newsletter_name"`
	CompanyName    string `json:"company_name"`
	SponsorLogoURL string `json:"sponsor_logo_url,omitempty"`
}
