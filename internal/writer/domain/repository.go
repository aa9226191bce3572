package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, writer *Writer) error
	Update(ctx context.Context, db *gorm.DB, writer *Writer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Writer, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Writer, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Writer, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Params) ([]Writer, int64, error)
	SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error)
	Stats(ctx context.Context, db *gorm.DB, writerID snowflake.ID) (Stats, error)

	InsertBlackout(ctx context.Context, db *gorm.DB, blackout *BlackoutDate) error
	DeleteBlackout(ctx context.Context, db *gorm.DB, writerID snowflake.ID, date time.Time) (bool, error)
	ListBlackouts(ctx context.Context, db *gorm.DB, writerID snowflake.ID) ([]BlackoutDate, error)
	ListBlackoutsBetween(ctx context.Context, db *gorm.DB, writerID snowflake.ID, from, to time.Time) ([]BlackoutDate, error)
}
