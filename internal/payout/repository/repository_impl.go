package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/internal/payout/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LockWriterRow(ctx context.Context, tx *gorm.DB, writerID snowflake.ID) error {
	query := `SELECT id FROM writers WHERE id = ?`
	// sqlite has no row locks and serializes writers on its own.
	if tx.Dialector.Name() != "sqlite" {
		query += ` FOR UPDATE`
	}

	var id snowflake.ID
	if err := tx.WithContext(ctx).Raw(query, writerID).Scan(&id).Error; err != nil {
		return err
	}
	if id == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// claimedCond matches bookings held by a payout that is still owed or
// already settled. Failed payouts do not hold their claims.
const claimedCond = `EXISTS (
	SELECT 1 FROM payout_bookings
	JOIN payouts ON payouts.id = payout_bookings.payout_id
	WHERE payout_bookings.booking_id = bookings.id
	  AND payouts.status IN ('processing', 'paid')
)`

func (r *repo) EligibleBookings(ctx context.Context, db *gorm.DB, writerID snowflake.ID) ([]bookingdomain.Booking, error) {
	var bookings []bookingdomain.Booking
	err := db.WithContext(ctx).
		Where("writer_id = ? AND status = ?", writerID, bookingdomain.StatusPublished).
		Where("NOT " + claimedCond).
		Order("slot_date asc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) InsertPayout(ctx context.Context, db *gorm.DB, payout *domain.Payout, claims []domain.PayoutBooking) error {
	if err := db.WithContext(ctx).Create(payout).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&claims).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payout, error) {
	var payout domain.Payout
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&payout).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repo) BookingsForPayout(ctx context.Context, db *gorm.DB, payoutID snowflake.ID) ([]bookingdomain.Booking, error) {
	var bookings []bookingdomain.Booking
	err := db.WithContext(ctx).
		Table("bookings").
		Joins("JOIN payout_bookings ON payout_bookings.booking_id = bookings.id").
		Where("payout_bookings.payout_id = ?", payoutID).
		Order("bookings.slot_date asc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) ListForWriter(ctx context.Context, db *gorm.DB, writerID snowflake.ID, page pagination.Params) ([]domain.Payout, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Payout{}).
		Where("writer_id = ?", writerID)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payouts []domain.Payout
	err := stmt.
		Order("created_at desc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&payouts).Error
	if err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, failureReason string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": at,
	}
	switch status {
	case domain.StatusPaid:
		updates["paid_at"] = at
	case domain.StatusFailed:
		updates["failed_at"] = at
		updates["failure_reason"] = failureReason
	}

	result := db.WithContext(ctx).
		Model(&domain.Payout{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) PayoutSums(ctx context.Context, db *gorm.DB, writerID snowflake.ID) (int64, int64, error) {
	var sums struct {
		PendingCents   int64
		TotalPaidCents int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Payout{}).
		Select(`COALESCE(SUM(CASE WHEN status = 'processing' THEN amount_cents END), 0) AS pending_cents,
			COALESCE(SUM(CASE WHEN status = 'paid' THEN amount_cents END), 0) AS total_paid_cents`).
		Where("writer_id = ?", writerID).
		Scan(&sums).Error
	if err != nil {
		return 0, 0, err
	}
	return sums.PendingCents, sums.TotalPaidCents, nil
}
