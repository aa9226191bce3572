package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sponsor *Sponsor) error
	Update(ctx context.Context, db *gorm.DB, sponsor *Sponsor) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sponsor, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Sponsor, error)
}
