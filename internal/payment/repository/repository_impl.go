package repository

import (
	"context"

	"github.com/sponsorloop/sponsorloop/internal/payment/domain"
	"gorm.io/gorm"
)

type Repository struct{}

func Provide() domain.Repository {
	return &Repository{}
}

func (r *Repository) InsertEvent(ctx context.Context, db *gorm.DB, record *domain.EventRecord) error {
	return db.WithContext(ctx).Create(record).Error
}
