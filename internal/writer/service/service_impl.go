package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/writer/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSlugAttempts = 5

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Platform *config.PlatformConfigHolder
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	platform *config.PlatformConfigHolder
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("writer.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		platform: p.Platform,
		repo:     p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, identity authdomain.Identity, req domain.CreateWriterRequest) (domain.Writer, error) {
	if identity.Role != authdomain.RoleWriter && identity.Role != authdomain.RoleAdmin {
		return domain.Writer{}, domain.ErrForbidden
	}

	existing, err := s.repo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.Writer{}, err
	}
	if existing != nil {
		return domain.Writer{}, domain.ErrProfileExists
	}

	name := strings.TrimSpace(req.NewsletterName)
	if name == "" {
		return domain.Writer{}, domain.ErrInvalidName
	}
	if req.PricePerSlot <= 0 {
		return domain.Writer{}, domain.ErrInvalidPrice
	}

	platform := s.platform.Get()

	leadTime := platform.DefaultLeadDays
	if req.LeadTimeDays != nil {
		leadTime = *req.LeadTimeDays
	}
	if leadTime < 0 {
		return domain.Writer{}, domain.ErrInvalidLeadTime
	}

	slotsPerWeek := platform.DefaultSlotsPerWeek
	if req.SlotsPerWeek != nil {
		slotsPerWeek = *req.SlotsPerWeek
	}
	if slotsPerWeek < 1 {
		return domain.Writer{}, domain.ErrInvalidSlotCount
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = platform.DefaultCurrency
	}

	slugValue, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return domain.Writer{}, err
	}

	now := s.clock.Now().UTC()
	writer := domain.Writer{
		ID:              s.genID.Generate(),
		UserID:          identity.UserID,
		Slug:            slugValue,
		NewsletterName:  name,
		NewsletterURL:   strings.TrimSpace(req.NewsletterURL),
		Description:     strings.TrimSpace(req.Description),
		SubscriberCount: req.SubscriberCount,
		PricePerSlot:    req.PricePerSlot,
		Currency:        currency,
		LeadTimeDays:    leadTime,
		SlotsPerWeek:    slotsPerWeek,
		PlatformFeeBps:  platform.DefaultFeeBps,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &writer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Writer{}, domain.ErrProfileExists
		}
		return domain.Writer{}, err
	}

	s.log.Info("writer profile created",
		zap.String("writer_id", writer.ID.String()),
		zap.String("slug", writer.Slug),
	)

	return writer, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Writer, error) {
	writerID, err := parseID(id)
	if err != nil {
		return domain.Writer{}, err
	}
	writer, err := s.repo.FindByID(ctx, s.db, writerID)
	if err != nil {
		return domain.Writer{}, err
	}
	if writer == nil {
		return domain.Writer{}, domain.ErrNotFound
	}
	return *writer, nil
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (domain.Writer, error) {
	writer, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(slugValue))
	if err != nil {
		return domain.Writer{}, err
	}
	if writer == nil {
		return domain.Writer{}, domain.ErrNotFound
	}
	return *writer, nil
}

func (s *Service) GetByUser(ctx context.Context, identity authdomain.Identity) (domain.Writer, error) {
	writer, err := s.repo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.Writer{}, err
	}
	if writer == nil {
		return domain.Writer{}, domain.ErrNotFound
	}
	return *writer, nil
}

func (s *Service) Update(ctx context.Context, identity authdomain.Identity, id string, req domain.UpdateWriterRequest) (domain.Writer, error) {
	writer, err := s.getOwned(ctx, identity, id)
	if err != nil {
		return domain.Writer{}, err
	}

	if req.NewsletterName != nil {
		name := strings.TrimSpace(*req.NewsletterName)
		if name == "" {
			return domain.Writer{}, domain.ErrInvalidName
		}
		writer.NewsletterName = name
	}
	if req.NewsletterURL != nil {
		writer.NewsletterURL = strings.TrimSpace(*req.NewsletterURL)
	}
	if req.Description != nil {
		writer.Description = strings.TrimSpace(*req.Description)
	}
	if req.SubscriberCount != nil {
		writer.SubscriberCount = req.SubscriberCount
	}
	if req.PricePerSlot != nil {
		if *req.PricePerSlot <= 0 {
			return domain.Writer{}, domain.ErrInvalidPrice
		}
		writer.PricePerSlot = *req.PricePerSlot
	}
	if req.LeadTimeDays != nil {
		if *req.LeadTimeDays < 0 {
			return domain.Writer{}, domain.ErrInvalidLeadTime
		}
		writer.LeadTimeDays = *req.LeadTimeDays
	}
	if req.SlotsPerWeek != nil {
		if *req.SlotsPerWeek < 1 {
			return domain.Writer{}, domain.ErrInvalidSlotCount
		}
		writer.SlotsPerWeek = *req.SlotsPerWeek
	}
	if req.AutoApprove != nil {
		writer.AutoApprove = *req.AutoApprove
	}

	writer.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, writer); err != nil {
		return domain.Writer{}, err
	}
	return *writer, nil
}

func (s *Service) List(ctx context.Context, page pagination.Params) (pagination.Page[domain.Writer], error) {
	page = page.Validated()
	writers, total, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return pagination.Page[domain.Writer]{}, err
	}
	return pagination.NewPage(writers, total, page), nil
}

func (s *Service) GetStats(ctx context.Context, identity authdomain.Identity, id string) (domain.Stats, error) {
	writer, err := s.getOwned(ctx, identity, id)
	if err != nil {
		return domain.Stats{}, err
	}
	return s.repo.Stats(ctx, s.db, writer.ID)
}

func (s *Service) AddBlackout(ctx context.Context, identity authdomain.Identity, writerID string, req domain.CreateBlackoutRequest) (domain.BlackoutDate, error) {
	writer, err := s.getOwned(ctx, identity, writerID)
	if err != nil {
		return domain.BlackoutDate{}, err
	}

	date := truncateToDay(req.BlockedDate)
	if !date.After(clock.Today(s.clock)) {
		return domain.BlackoutDate{}, domain.ErrBlackoutInPast
	}

	blackout := domain.BlackoutDate{
		ID:          s.genID.Generate(),
		WriterID:    writer.ID,
		BlockedDate: date,
		Reason:      strings.TrimSpace(req.Reason),
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.InsertBlackout(ctx, s.db, &blackout); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.BlackoutDate{}, domain.ErrBlackoutExists
		}
		return domain.BlackoutDate{}, err
	}
	return blackout, nil
}

func (s *Service) RemoveBlackout(ctx context.Context, identity authdomain.Identity, writerID string, date time.Time) error {
	writer, err := s.getOwned(ctx, identity, writerID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteBlackout(ctx, s.db, writer.ID, truncateToDay(date))
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrBlackoutNotFound
	}
	return nil
}

func (s *Service) ListBlackouts(ctx context.Context, writerID string) ([]domain.BlackoutDate, error) {
	id, err := parseID(writerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBlackouts(ctx, s.db, id)
}

func (s *Service) getOwned(ctx context.Context, identity authdomain.Identity, id string) (*domain.Writer, error) {
	writerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	writer, err := s.repo.FindByID(ctx, s.db, writerID)
	if err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, domain.ErrNotFound
	}
	if identity.Role != authdomain.RoleAdmin && writer.UserID != identity.UserID {
		return nil, domain.ErrForbidden
	}
	return writer, nil
}

func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "newsletter"
	}

	candidate := base
	for i := 0; i < maxSlugAttempts; i++ {
		taken, err := s.repo.SlugExists(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i+2)
	}

	// Fall back to a collision-proof suffix after repeated conflicts.
	return fmt.Sprintf("%s-%s", base, s.genID.Generate().String()), nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func truncateToDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
