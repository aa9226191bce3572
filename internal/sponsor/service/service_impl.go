package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sponsor.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, identity authdomain.Identity, req domain.CreateSponsorRequest) (domain.Sponsor, error) {
	if identity.Role != authdomain.RoleSponsor && identity.Role != authdomain.RoleAdmin {
		return domain.Sponsor{}, domain.ErrForbidden
	}

	existing, err := s.repo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.Sponsor{}, err
	}
	if existing != nil {
		return domain.Sponsor{}, domain.ErrProfileExists
	}

	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return domain.Sponsor{}, domain.ErrInvalidCompanyName
	}

	now := s.clock.Now().UTC()
	sponsor := domain.Sponsor{
		ID:           s.genID.Generate(),
		UserID:       identity.UserID,
		CompanyName:  name,
		WebsiteURL:   strings.TrimSpace(req.WebsiteURL),
		LogoURL:      strings.TrimSpace(req.LogoURL),
		BillingEmail: strings.TrimSpace(req.BillingEmail),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &sponsor); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Sponsor{}, domain.ErrProfileExists
		}
		return domain.Sponsor{}, err
	}

	s.log.Info("sponsor profile created", zap.String("sponsor_id", sponsor.ID.String()))

	return sponsor, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Sponsor, error) {
	sponsorID, err := parseID(id)
	if err != nil {
		return domain.Sponsor{}, err
	}
	sponsor, err := s.repo.FindByID(ctx, s.db, sponsorID)
	if err != nil {
		return domain.Sponsor{}, err
	}
	if sponsor == nil {
		return domain.Sponsor{}, domain.ErrNotFound
	}
	return *sponsor, nil
}

func (s *Service) GetByUser(ctx context.Context, identity authdomain.Identity) (domain.Sponsor, error) {
	sponsor, err := s.repo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.Sponsor{}, err
	}
	if sponsor == nil {
		return domain.Sponsor{}, domain.ErrNotFound
	}
	return *sponsor, nil
}

func (s *Service) Update(ctx context.Context, identity authdomain.Identity, id string, req domain.UpdateSponsorRequest) (domain.Sponsor, error) {
	sponsorID, err := parseID(id)
	if err != nil {
		return domain.Sponsor{}, err
	}
	sponsor, err := s.repo.FindByID(ctx, s.db, sponsorID)
	if err != nil {
		return domain.Sponsor{}, err
	}
	if sponsor == nil {
		return domain.Sponsor{}, domain.ErrNotFound
	}
	if identity.Role != authdomain.RoleAdmin && sponsor.UserID != identity.UserID {
		return domain.Sponsor{}, domain.ErrForbidden
	}

	if req.CompanyName != nil {
		name := strings.TrimSpace(*req.CompanyName)
		if name == "" {
			return domain.Sponsor{}, domain.ErrInvalidCompanyName
		}
		sponsor.CompanyName = name
	}
	if req.WebsiteURL != nil {
		sponsor.WebsiteURL = strings.TrimSpace(*req.WebsiteURL)
	}
	if req.LogoURL != nil {
		sponsor.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	if req.BillingEmail != nil {
		sponsor.BillingEmail = strings.TrimSpace(*req.BillingEmail)
	}

	sponsor.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, sponsor); err != nil {
		return domain.Sponsor{}, err
	}
	return *sponsor, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
