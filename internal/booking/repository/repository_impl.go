package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Create(booking).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&booking).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repo) FindByProviderOrderID(ctx context.Context, db *gorm.DB, orderID string) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).
		Where("provider_order_id = ?", orderID).
		Take(&booking).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

const detailSelect = `bookings.*,
	writers.newsletter_name AS newsletter_name,
	sponsors.company_name AS company_name,
	sponsors.logo_url AS sponsor_logo_url`

func (r *repo) FindDetail(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Detail, error) {
	var detail domain.Detail
	err := db.WithContext(ctx).
		Table("bookings").
		Select(detailSelect).
		Joins("JOIN writers ON writers.id = bookings.writer_id").
		Joins("JOIN sponsors ON sponsors.id = bookings.sponsor_id").
		Where("bookings.id = ?", id).
		Take(&detail).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
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

func (r *repo) CountOccupying(ctx context.Context, tx *gorm.DB, writerID snowflake.ID, slotDate time.Time) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("writer_id = ? AND slot_date = ?", writerID, slotDate).
		Where("status NOT IN ?", []domain.Status{
			domain.StatusRejected, domain.StatusCancelled, domain.StatusRefunded,
		}).
		Count(&count).Error
	return count, err
}

func (r *repo) HasBlackout(ctx context.Context, tx *gorm.DB, writerID snowflake.ID, slotDate time.Time) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Table("blackout_dates").
		Where("writer_id = ? AND blocked_date = ?", writerID, slotDate).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) WriterSlotsPerWeek(ctx context.Context, tx *gorm.DB, writerID snowflake.ID) (int, error) {
	var slots int
	err := tx.WithContext(ctx).Raw(
		`SELECT slots_per_week FROM writers WHERE id = ?`, writerID,
	).Scan(&slots).Error
	return slots, err
}

// statusTimestamps maps a status to the audit column stamped on entry.
var statusTimestamps = map[domain.Status]string{
	domain.StatusPaid:      "paid_at",
	domain.StatusApproved:  "approved_at",
	domain.StatusRejected:  "rejected_at",
	domain.StatusPublished: "published_at",
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, from []domain.Status, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": at,
	}
	if column, ok := statusTimestamps[status]; ok {
		updates[column] = at
	}

	result := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) SetProviderOrder(ctx context.Context, db *gorm.DB, id snowflake.ID, orderID string) error {
	return db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Update("provider_order_id", orderID).Error
}

func (r *repo) UpdateAdContent(ctx context.Context, db *gorm.DB, id snowflake.ID, content domain.AdContent, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ad_headline":  content.Headline,
			"ad_body":      content.Body,
			"ad_cta_text":  content.CTAText,
			"ad_cta_url":   content.CTAURL,
			"ad_image_url": content.ImageURL,
			"updated_at":   at,
		}).Error
}

var sortColumns = map[string]string{
	"slot_date_asc":   "bookings.slot_date asc",
	"slot_date_desc":  "bookings.slot_date desc",
	"created_at_asc":  "bookings.created_at asc",
	"created_at_desc": "bookings.created_at desc",
	"amount_asc":      "bookings.amount_cents asc",
	"amount_desc":     "bookings.amount_cents desc",
}

func (r *repo) ListForSponsor(ctx context.Context, db *gorm.DB, sponsorID snowflake.ID, filter domain.ListFilter, page pagination.Params) ([]domain.Detail, int64, error) {
	return r.list(ctx, db, "bookings.sponsor_id = ?", sponsorID, filter, page)
}

func (r *repo) ListForWriter(ctx context.Context, db *gorm.DB, writerID snowflake.ID, filter domain.ListFilter, page pagination.Params) ([]domain.Detail, int64, error) {
	return r.list(ctx, db, "bookings.writer_id = ?", writerID, filter, page)
}

func (r *repo) list(ctx context.Context, db *gorm.DB, ownerCond string, ownerID snowflake.ID, filter domain.ListFilter, page pagination.Params) ([]domain.Detail, int64, error) {
	stmt := db.WithContext(ctx).
		Table("bookings").
		Joins("JOIN writers ON writers.id = bookings.writer_id").
		Joins("JOIN sponsors ON sponsors.id = bookings.sponsor_id").
		Where(ownerCond, ownerID)

	if filter.Status != nil {
		stmt = stmt.Where("bookings.status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		stmt = stmt.Where("bookings.slot_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		stmt = stmt.Where("bookings.slot_date <= ?", *filter.ToDate)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := sortColumns[filter.SortBy]
	if !ok {
		order = sortColumns["created_at_desc"]
	}

	var details []domain.Detail
	err := stmt.
		Select(detailSelect).
		Order(order).
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&details).Error
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

func (r *repo) UpcomingForWriter(ctx context.Context, db *gorm.DB, writerID snowflake.ID, after time.Time) ([]domain.Detail, error) {
	var details []domain.Detail
	err := db.WithContext(ctx).
		Table("bookings").
		Select(detailSelect).
		Joins("JOIN writers ON writers.id = bookings.writer_id").
		Joins("JOIN sponsors ON sponsors.id = bookings.sponsor_id").
		Where("bookings.writer_id = ? AND bookings.slot_date >= ?", writerID, after).
		Where("bookings.status IN ?", []domain.Status{domain.StatusPaid, domain.StatusApproved}).
		Order("bookings.slot_date asc").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}
