package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/internal/availability/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type dateCount struct {
	SlotDate time.Time
	Booked   int
}

func (r *repo) BookedCounts(ctx context.Context, db *gorm.DB, writerID snowflake.ID, from, to time.Time) (map[time.Time]int, error) {
	var rows []dateCount
	err := db.WithContext(ctx).Raw(
		`SELECT slot_date, COUNT(*) AS booked
		 FROM bookings
		 WHERE writer_id = ?
		   AND slot_date >= ? AND slot_date <= ?
		   AND status NOT IN ('rejected', 'cancelled', 'refunded')
		 GROUP BY slot_date`,
		writerID, from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Time]int, len(rows))
	for _, row := range rows {
		counts[row.SlotDate.UTC().Truncate(24*time.Hour)] = row.Booked
	}
	return counts, nil
}

func (r *repo) BookedCount(ctx context.Context, db *gorm.DB, writerID snowflake.ID, date time.Time) (int, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM bookings
		 WHERE writer_id = ? AND slot_date = ?
		   AND status NOT IN ('rejected', 'cancelled', 'refunded')`,
		writerID, date,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *repo) BlackoutDates(ctx context.Context, db *gorm.DB, writerID snowflake.ID, from, to time.Time) (map[time.Time]bool, error) {
	var dates []time.Time
	err := db.WithContext(ctx).Raw(
		`SELECT blocked_date FROM blackout_dates
		 WHERE writer_id = ? AND blocked_date >= ? AND blocked_date <= ?`,
		writerID, from, to,
	).Scan(&dates).Error
	if err != nil {
		return nil, err
	}

	blocked := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		blocked[d.UTC().Truncate(24*time.Hour)] = true
	}
	return blocked, nil
}

func (r *repo) IsBlackout(ctx context.Context, db *gorm.DB, writerID snowflake.ID, date time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM blackout_dates WHERE writer_id = ? AND blocked_date = ?`,
		writerID, date,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
