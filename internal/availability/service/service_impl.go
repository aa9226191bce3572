package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/internal/availability/domain"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Platform   *config.PlatformConfigHolder
	Repo       domain.Repository
	WriterRepo writerdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	platform   *config.PlatformConfigHolder
	repo       domain.Repository
	writerRepo writerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("availability.service"),
		clock:      p.Clock,
		platform:   p.Platform,
		repo:       p.Repo,
		writerRepo: p.WriterRepo,
	}
}

func (s *Service) ForWriter(ctx context.Context, writerID string, weeksAhead int) (domain.WriterAvailability, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(writerID))
	if err != nil || id == 0 {
		return domain.WriterAvailability{}, domain.ErrInvalidID
	}
	writer, err := s.writerRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.WriterAvailability{}, err
	}
	return s.forWriter(ctx, writer, weeksAhead)
}

func (s *Service) ForSlug(ctx context.Context, slug string, weeksAhead int) (domain.WriterAvailability, error) {
	writer, err := s.writerRepo.FindBySlug(ctx, s.db, strings.TrimSpace(slug))
	if err != nil {
		return domain.WriterAvailability{}, err
	}
	return s.forWriter(ctx, writer, weeksAhead)
}

func (s *Service) forWriter(ctx context.Context, writer *writerdomain.Writer, weeksAhead int) (domain.WriterAvailability, error) {
	if writer == nil {
		return domain.WriterAvailability{}, domain.ErrNotFound
	}

	maxWeeks := s.platform.Get().MaxWeeksAhead
	if weeksAhead <= 0 {
		weeksAhead = maxWeeks
	}
	if weeksAhead > maxWeeks {
		return domain.WriterAvailability{}, domain.ErrInvalidWindow
	}

	today := clock.Today(s.clock)
	dates := domain.Schedule(today, writer.LeadTimeDays, weeksAhead)

	availability := domain.WriterAvailability{
		WriterID:       writer.ID,
		Slug:           writer.Slug,
		NewsletterName: writer.NewsletterName,
		PricePerSlot:   writer.PricePerSlot,
		Currency:       writer.Currency,
		AvailableSlots: []domain.AvailableSlot{},
	}
	if len(dates) == 0 {
		return availability, nil
	}

	from, to := dates[0], dates[len(dates)-1]
	counts, err := s.repo.BookedCounts(ctx, s.db, writer.ID, from, to)
	if err != nil {
		return domain.WriterAvailability{}, err
	}
	blocked, err := s.repo.BlackoutDates(ctx, s.db, writer.ID, from, to)
	if err != nil {
		return domain.WriterAvailability{}, err
	}

	for _, date := range dates {
		if blocked[date] {
			continue
		}
		remaining := writer.SlotsPerWeek - counts[date]
		if remaining <= 0 {
			continue
		}
		availability.AvailableSlots = append(availability.AvailableSlots, domain.AvailableSlot{
			Date:           date,
			SlotsRemaining: remaining,
		})
	}

	return availability, nil
}

func (s *Service) IsSlotAvailable(ctx context.Context, writerID snowflake.ID, date time.Time) (bool, error) {
	writer, err := s.writerRepo.FindByID(ctx, s.db, writerID)
	if err != nil {
		return false, err
	}
	if writer == nil {
		return false, domain.ErrNotFound
	}

	date = date.UTC().Truncate(24 * time.Hour)
	blocked, err := s.repo.IsBlackout(ctx, s.db, writer.ID, date)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}

	booked, err := s.repo.BookedCount(ctx, s.db, writer.ID, date)
	if err != nil {
		return false, err
	}
	return booked < writer.SlotsPerWeek, nil
}
