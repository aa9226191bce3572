package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	LockWriterRow(ctx context.Context, db *gorm.DB, writerID snowflake.ID) error
	EligibleBookings(ctx context.Context, db *gorm.DB, writerID snowflake.ID) ([]bookingdomain.Booking, error)
	InsertPayout(ctx context.Context, db *gorm.DB, payout *Payout, claims []PayoutBooking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payout, error)
	BookingsForPayout(ctx context.Context, db *gorm.DB, payoutID snowflake.ID) ([]bookingdomain.Booking, error)
	ListForWriter(ctx context.Context, db *gorm.DB, writerID snowflake.ID, page pagination.Params) ([]Payout, int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, failureReason string, at time.Time) (bool, error)
	PayoutSums(ctx context.Context, db *gorm.DB, writerID snowflake.ID) (pendingCents int64, totalPaidCents int64, err error)
}
