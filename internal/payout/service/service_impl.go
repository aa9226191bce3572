package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/payout/domain"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	WriterRepo writerdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	writerRepo writerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payout.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		writerRepo: p.WriterRepo,
	}
}

func (s *Service) EligibleBookings(ctx context.Context, identity authdomain.Identity) ([]bookingdomain.Booking, error) {
	writer, err := s.writerForIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.repo.EligibleBookings(ctx, s.db, writer.ID)
}

func (s *Service) CreatePayout(ctx context.Context, identity authdomain.Identity, req domain.CreateRequest) (domain.Payout, error) {
	writer, err := s.writerForIdentity(ctx, identity)
	if err != nil {
		return domain.Payout{}, err
	}

	requested := make(map[snowflake.ID]bool, len(req.BookingIDs))
	for _, raw := range req.BookingIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			return domain.Payout{}, domain.ErrInvalidID
		}
		requested[id] = true
	}

	var payout domain.Payout
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligibility is re-read under the writer lock so two concurrent
		// requests cannot claim the same booking twice.
		if err := s.repo.LockWriterRow(ctx, tx, writer.ID); err != nil {
			return err
		}
		eligible, err := s.repo.EligibleBookings(ctx, tx, writer.ID)
		if err != nil {
			return err
		}

		var selected []bookingdomain.Booking
		for _, booking := range eligible {
			if len(requested) == 0 || requested[booking.ID] {
				selected = append(selected, booking)
			}
		}
		if len(selected) == 0 {
			return domain.ErrNoEligibleBookings
		}

		now := s.clock.Now().UTC()
		var total int64
		claims := make([]domain.PayoutBooking, 0, len(selected))
		payout = domain.Payout{
			ID:        s.genID.Generate(),
			WriterID:  writer.ID,
			Reference: "payout_" + ulid.Make().String(),
			Currency:  writer.Currency,
			Status:    domain.StatusProcessing,
			CreatedAt: now,
			UpdatedAt: now,
		}
		for _, booking := range selected {
			total += booking.WriterPayoutCents
			claims = append(claims, domain.PayoutBooking{
				PayoutID:  payout.ID,
				BookingID: booking.ID,
			})
		}
		payout.AmountCents = total

		return s.repo.InsertPayout(ctx, tx, &payout, claims)
	})
	if err != nil {
		return domain.Payout{}, err
	}

	s.log.Info("payout created",
		zap.String("payout_id", payout.ID.String()),
		zap.String("writer_id", writer.ID.String()),
		zap.Int64("amount_cents", payout.AmountCents),
	)
	return payout, nil
}

func (s *Service) GetByID(ctx context.Context, identity authdomain.Identity, id string) (domain.Payout, []bookingdomain.Booking, error) {
	payoutID, err := parseID(id)
	if err != nil {
		return domain.Payout{}, nil, err
	}
	payout, err := s.repo.FindByID(ctx, s.db, payoutID)
	if err != nil {
		return domain.Payout{}, nil, err
	}
	if payout == nil {
		return domain.Payout{}, nil, domain.ErrNotFound
	}

	if identity.Role != authdomain.RoleAdmin {
		writer, err := s.writerForIdentity(ctx, identity)
		if err != nil {
			return domain.Payout{}, nil, err
		}
		if writer.ID != payout.WriterID {
			return domain.Payout{}, nil, domain.ErrForbidden
		}
	}

	bookings, err := s.repo.BookingsForPayout(ctx, s.db, payoutID)
	if err != nil {
		return domain.Payout{}, nil, err
	}
	return *payout, bookings, nil
}

func (s *Service) List(ctx context.Context, identity authdomain.Identity, page pagination.Params) (pagination.Page[domain.Payout], error) {
	writer, err := s.writerForIdentity(ctx, identity)
	if err != nil {
		return pagination.Page[domain.Payout]{}, err
	}

	page = page.Validated()
	payouts, total, err := s.repo.ListForWriter(ctx, s.db, writer.ID, page)
	if err != nil {
		return pagination.Page[domain.Payout]{}, err
	}
	return pagination.NewPage(payouts, total, page), nil
}

func (s *Service) UpdateStatus(ctx context.Context, identity authdomain.Identity, id string, req domain.UpdateStatusRequest) (domain.Payout, error) {
	if identity.Role != authdomain.RoleAdmin {
		return domain.Payout{}, domain.ErrForbidden
	}
	payoutID, err := parseID(id)
	if err != nil {
		return domain.Payout{}, err
	}

	status, ok := domain.ParseStatus(req.Status)
	if !ok || status == domain.StatusProcessing {
		return domain.Payout{}, domain.ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, payoutID, status, req.FailureReason, s.clock.Now().UTC())
	if err != nil {
		return domain.Payout{}, err
	}
	if !updated {
		payout, err := s.repo.FindByID(ctx, s.db, payoutID)
		if err != nil {
			return domain.Payout{}, err
		}
		if payout == nil {
			return domain.Payout{}, domain.ErrNotFound
		}
		// Settled payouts are immutable.
		return domain.Payout{}, domain.ErrInvalidStatus
	}

	payout, err := s.repo.FindByID(ctx, s.db, payoutID)
	if err != nil {
		return domain.Payout{}, err
	}
	if payout == nil {
		return domain.Payout{}, domain.ErrNotFound
	}

	s.log.Info("payout status updated",
		zap.String("payout_id", payout.ID.String()),
		zap.String("status", string(payout.Status)),
	)
	return *payout, nil
}

func (s *Service) Summary(ctx context.Context, identity authdomain.Identity) (domain.Summary, error) {
	writer, err := s.writerForIdentity(ctx, identity)
	if err != nil {
		return domain.Summary{}, err
	}

	eligible, err := s.repo.EligibleBookings(ctx, s.db, writer.ID)
	if err != nil {
		return domain.Summary{}, err
	}
	pending, totalPaid, err := s.repo.PayoutSums(ctx, s.db, writer.ID)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		PendingCents:   pending,
		TotalPaidCents: totalPaid,
		EligibleCount:  int64(len(eligible)),
	}
	for _, booking := range eligible {
		summary.AvailableCents += booking.WriterPayoutCents
	}
	return summary, nil
}

func (s *Service) writerForIdentity(ctx context.Context, identity authdomain.Identity) (*writerdomain.Writer, error) {
	writer, err := s.writerRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, domain.ErrNoWriterProfile
	}
	return writer, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
