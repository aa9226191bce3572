package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/internal/writer/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, writer *domain.Writer) error {
	return db.WithContext(ctx).Create(writer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, writer *domain.Writer) error {
	return db.WithContext(ctx).Save(writer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Writer, error) {
	var writer domain.Writer
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&writer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &writer, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Writer, error) {
	var writer domain.Writer
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		Take(&writer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &writer, nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Writer, error) {
	var writer domain.Writer
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&writer).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &writer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Params) ([]domain.Writer, int64, error) {
	var total int64
	stmt := db.WithContext(ctx).Model(&domain.Writer{})
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var writers []domain.Writer
	err := stmt.
		Order("created_at desc, id desc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&writers).Error
	if err != nil {
		return nil, 0, err
	}
	return writers, total, nil
}

func (r *repo) SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Writer{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, writerID snowflake.ID) (domain.Stats, error) {
	var stats domain.Stats
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(CASE WHEN status = 'published' THEN 1 END) AS total_published,
			COUNT(CASE WHEN status IN ('paid', 'approved') THEN 1 END) AS pending_bookings,
			COALESCE(SUM(CASE WHEN status = 'published' THEN writer_payout_cents END), 0) AS total_revenue_cents,
			COALESCE(SUM(CASE WHEN status IN ('paid', 'approved') THEN writer_payout_cents END), 0) AS pending_revenue_cents
		 FROM bookings WHERE writer_id = ?`,
		writerID,
	).Scan(&stats).Error
	if err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}

func (r *repo) InsertBlackout(ctx context.Context, db *gorm.DB, blackout *domain.BlackoutDate) error {
	return db.WithContext(ctx).Create(blackout).Error
}

func (r *repo) DeleteBlackout(ctx context.Context, db *gorm.DB, writerID snowflake.ID, date time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Where("writer_id = ? AND blocked_date = ?", writerID, date).
		Delete(&domain.BlackoutDate{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListBlackouts(ctx context.Context, db *gorm.DB, writerID snowflake.ID) ([]domain.BlackoutDate, error) {
	var blackouts []domain.BlackoutDate
	err := db.WithContext(ctx).
		Where("writer_id = ?", writerID).
		Order("blocked_date asc").
		Find(&blackouts).Error
	if err != nil {
		return nil, err
	}
	return blackouts, nil
}

func (r *repo) ListBlackoutsBetween(ctx context.Context, db *gorm.DB, writerID snowflake.ID, from, to time.Time) ([]domain.BlackoutDate, error) {
	var blackouts []domain.BlackoutDate
	err := db.WithContext(ctx).
		Where("writer_id = ? AND blocked_date >= ? AND blocked_date <= ?", writerID, from, to).
		Order("blocked_date asc").
		Find(&blackouts).Error
	if err != nil {
		return nil, err
	}
	return blackouts, nil
}
