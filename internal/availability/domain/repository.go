package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository reads booking occupancy for availability math. Statuses
// rejected, cancelled and refunded release their slot and are excluded
// from every count.
type Repository interface {
	BookedCounts(ctx context.Context, db *gorm.DB, writerID snowflake.ID, from, to time.Time) (map[time.Time]int, error)
	BookedCount(ctx context.Context, db *gorm.DB, writerID snowflake.ID, date time.Time) (int, error)
	BlackoutDates(ctx context.Context, db *gorm.DB, writerID snowflake.ID, from, to time.Time) (map[time.Time]bool, error)
	IsBlackout(ctx context.Context, db *gorm.DB, writerID snowflake.ID, date time.Time) (bool, error)
}
