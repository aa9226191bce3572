package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
)

type ReserveRequest struct {
	WriterID string    `json:"writer_id"`
	SlotDate time.Time `json:"slot_date" time_format:"2006-01-02"`
	AdContent
}

// ReserveResult pairs the pending booking with the hosted checkout the
// sponsor must complete to pay for it.
type ReserveResult struct {
	Booking     Booking `json:"booking"`
	CheckoutURL string  `json:"checkout_url"`
}

type ListFilter struct {
	Status   *Status
	FromDate *time.Time
	ToDate   *time.Time
	SortBy   string
}

type Service interface {
	Reserve(ctx context.Context, identity authdomain.Identity, req ReserveRequest) (ReserveResult, error)
	GetByID(ctx context.Context, identity authdomain.Identity, id string) (Detail, error)
	ListForSponsor(ctx context.Context, identity authdomain.Identity, filter ListFilter, page pagination.Params) (pagination.Page[Detail], error)
	ListForWriter(ctx context.Context, identity authdomain.Identity, filter ListFilter, page pagination.Params) (pagination.Page[Detail], error)
	UpcomingForWriter(ctx context.Context, identity authdomain.Identity) ([]Detail, error)
	UpdateAdContent(ctx context.Context, identity authdomain.Identity, id string, content AdContent) (Booking, error)

	Approve(ctx context.Context, identity authdomain.Identity, id string) error
	Reject(ctx context.Context, identity authdomain.Identity, id string, reason string) error
	Publish(ctx context.Context, identity authdomain.Identity, id string) error
	Cancel(ctx context.Context, identity authdomain.Identity, id string) error

	// Reconciler entry points, driven by verified webhook events only.
	MarkPaid(ctx context.Context, bookingID snowflake.ID, providerOrderID string) (Status, error)
	MarkRefundedByOrder(ctx context.Context, providerOrderID string) (Status, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Booking, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidAdContent  = errors.New("invalid_ad_content")
	ErrSlotNotAvailable  = errors.New("slot_not_available")
	ErrSlotTooSoon       = errors.New("slot_inside_lead_time")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrBillingEmail      = errors.New("billing_email_required")
	ErrNoSponsorProfile  = errors.New("sponsor_profile_required")
	ErrNoWriterProfile   = errors.New("writer_profile_required")
)
