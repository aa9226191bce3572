package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	FindByProviderOrderID(ctx context.Context, db *gorm.DB, orderID string) (*Booking, error)
	FindDetail(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Detail, error)

	// LockWriterRow takes a row lock on the writer so concurrent
	// reservations for the same newsletter serialize.
	LockWriterRow(ctx context.Context, tx *gorm.DB, writerID snowflake.ID) error
	CountOccupying(ctx context.Context, tx *gorm.DB, writerID snowflake.ID, slotDate time.Time) (int64, error)
	HasBlackout(ctx context.Context, tx *gorm.DB, writerID snowflake.ID, slotDate time.Time) (bool, error)
	WriterSlotsPerWeek(ctx context.Context, tx *gorm.DB, writerID snowflake.ID) (int, error)

	// UpdateStatus moves a booking to status only when its current
	// status is one of from, stamping the matching timestamp column.
	// Returns false when the guard matched no row.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, from []Status, at time.Time) (bool, error)
	SetProviderOrder(ctx context.Context, db *gorm.DB, id snowflake.ID, orderID string) error
	UpdateAdContent(ctx context.Context, db *gorm.DB, id snowflake.ID, content AdContent, at time.Time) error

	ListForSponsor(ctx context.Context, db *gorm.DB, sponsorID snowflake.ID, filter ListFilter, page pagination.Params) ([]Detail, int64, error)
	ListForWriter(ctx context.Context, db *gorm.DB, writerID snowflake.ID, filter ListFilter, page pagination.Params) ([]Detail, int64, error)
	UpcomingForWriter(ctx context.Context, db *gorm.DB, writerID snowflake.ID, after time.Time) ([]Detail, error)
}
