package domain

import (
	"context"
	"errors"

	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
)

var (
	ErrNotFound           = errors.New("payout_not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidStatus      = errors.New("invalid_payout_status")
	ErrNoEligibleBookings = errors.New("no_eligible_bookings")
	ErrNoWriterProfile    = errors.New("writer_profile_not_found")
)

type CreateRequest struct {
	// BookingIDs restricts the payout to a subset of eligible bookings.
	// Empty means everything currently eligible.
	BookingIDs []string `json:"booking_ids"`
}

type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	FailureReason string `json:"failure_reason"`
}

type Service interface {
	EligibleBookings(ctx context.Context, identity authdomain.Identity) ([]bookingdomain.Booking, error)
	CreatePayout(ctx context.Context, identity authdomain.Identity, req CreateRequest) (Payout, error)
	GetByID(ctx context.Context, identity authdomain.Identity, id string) (Payout, []bookingdomain.Booking, error)
	List(ctx context.Context, identity authdomain.Identity, page pagination.Params) (pagination.Page[Payout], error)
	UpdateStatus(ctx context.Context, identity authdomain.Identity, id string, req UpdateStatusRequest) (Payout, error)
	Summary(ctx context.Context, identity authdomain.Identity) (Summary, error)
}
