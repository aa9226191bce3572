package domain

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
)

type CreateWriterRequest struct {
	NewsletterName  string `json:"newsletter_name"`
	NewsletterURL   string `json:"newsletter_url"`
	Description     string `json:"description"`
	SubscriberCount *int   `json:"subscriber_count"`
	PricePerSlot    int64  `json:"price_per_slot"`
	Currency        string `json:"currency"`
	LeadTimeDays    *int   `json:"lead_time_days"`
	SlotsPerWeek    *int   `json:"slots_per_week"`
}

type UpdateWriterRequest struct {
	NewsletterName  *string `json:"newsletter_name"`
	NewsletterURL   *string `json:"newsletter_url"`
	Description     *string `json:"description"`
	SubscriberCount *int    `json:"subscriber_count"`
	PricePerSlot    *int64  `json:"price_per_slot"`
	LeadTimeDays    *int    `json:"lead_time_days"`
	SlotsPerWeek    *int    `json:"slots_per_week"`
	AutoApprove     *bool   `json:"auto_approve"`
}

type CreateBlackoutRequest struct {
	BlockedDate time.Time `json:"blocked_date" time_format:"2006-01-02"`
	Reason      string    `json:"reason"`
}

type Service interface {
	Create(ctx context.Context, identity authdomain.Identity, req CreateWriterRequest) (Writer, error)
	GetByID(ctx context.Context, id string) (Writer, error)
	GetBySlug(ctx context.Context, slug string) (Writer, error)
	GetByUser(ctx context.Context, identity authdomain.Identity) (Writer, error)
	Update(ctx context.Context, identity authdomain.Identity, id string, req UpdateWriterRequest) (Writer, error)
	List(ctx context.Context, page pagination.Params) (pagination.Page[Writer], error)
	GetStats(ctx context.Context, identity authdomain.Identity, id string) (Stats, error)

	AddBlackout(ctx context.Context, identity authdomain.Identity, writerID string, req CreateBlackoutRequest) (BlackoutDate, error)
	RemoveBlackout(ctx context.Context, identity authdomain.Identity, writerID string, date time.Time) error
	ListBlackouts(ctx context.Context, writerID string) ([]BlackoutDate, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
	ErrForbidden        = errors.New("forbidden")
	ErrProfileExists    = errors.New("profile_exists")
	ErrInvalidName      = errors.New("invalid_newsletter_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidLeadTime  = errors.New("invalid_lead_time")
	ErrInvalidSlotCount = errors.New("invalid_slots_per_week")
	ErrBlackoutInPast   = errors.New("blackout_in_past")
	ErrBlackoutExists   = errors.New("blackout_exists")
	ErrBlackoutNotFound = errors.New("blackout_not_found")
)
