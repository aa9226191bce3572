package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sponsor *domain.Sponsor) error {
	return db.WithContext(ctx).Create(sponsor).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sponsor *domain.Sponsor) error {
	return db.WithContext(ctx).Save(sponsor).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sponsor, error) {
	var sponsor domain.Sponsor
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&sponsor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sponsor, nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Sponsor, error) {
	var sponsor domain.Sponsor
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&sponsor).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sponsor, nil
}
