package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/notify"
	paymentprovider "github.com/sponsorloop/sponsorloop/internal/providers/payment"
	sponsordomain "github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	WriterRepo  writerdomain.Repository
	SponsorRepo sponsordomain.Repository
	UserRepo    authdomain.Repository
	Provider    paymentprovider.Provider
	Notifier    *notify.Notifier
}

type Service struct {
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	writerRepo  writerdomain.Repository
	sponsorRepo sponsordomain.Repository
	userRepo    authdomain.Repository
	provider    paymentprovider.Provider
	notifier    *notify.Notifier
}

func New(p Params) domain.Service {
	return &Service{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("booking.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		writerRepo:  p.WriterRepo,
		sponsorRepo: p.SponsorRepo,
		userRepo:    p.UserRepo,
		provider:    p.Provider,
		notifier:    p.Notifier,
	}
}

func (s *Service) Reserve(ctx context.Context, identity authdomain.Identity, req domain.ReserveRequest) (domain.ReserveResult, error) {
	if identity.Role != authdomain.RoleSponsor && identity.Role != authdomain.RoleAdmin {
		return domain.ReserveResult{}, domain.ErrForbidden
	}

	content, err := domain.ValidateAdContent(req.AdContent)
	if err != nil {
		return domain.ReserveResult{}, err
	}

	sponsor, err := s.sponsorRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.ReserveResult{}, err
	}
	if sponsor == nil {
		return domain.ReserveResult{}, domain.ErrNoSponsorProfile
	}
	if strings.TrimSpace(sponsor.BillingEmail) == "" {
		return domain.ReserveResult{}, domain.ErrBillingEmail
	}

	writerID, err := parseID(req.WriterID)
	if err != nil {
		return domain.ReserveResult{}, err
	}
	writer, err := s.writerRepo.FindByID(ctx, s.db, writerID)
	if err != nil {
		return domain.ReserveResult{}, err
	}
	if writer == nil {
		return domain.ReserveResult{}, domain.ErrNotFound
	}

	slotDate := req.SlotDate.UTC().Truncate(24 * time.Hour)
	minDate := clock.Today(s.clock).AddDate(0, 0, writer.LeadTimeDays)
	if slotDate.Before(minDate) {
		return domain.ReserveResult{}, domain.ErrSlotTooSoon
	}

	// The booking ID is minted before checkout creation so the webhook
	// can resolve the booking from checkout custom data.
	bookingID := s.genID.Generate()
	feeCents, payoutCents := domain.SplitAmount(writer.PricePerSlot, writer.PlatformFeeBps)

	checkout, err := s.provider.CreateCheckout(ctx, paymentprovider.CreateCheckoutParams{
		BookingID:      bookingID.String(),
		WriterID:       writer.ID.String(),
		SponsorID:      sponsor.ID.String(),
		SponsorEmail:   sponsor.BillingEmail,
		NewsletterName: writer.NewsletterName,
		SlotDate:       slotDate.Format("2006-01-02"),
		AmountCents:    writer.PricePerSlot,
		SuccessURL:     fmt.Sprintf("%s/bookings/success", s.cfg.FrontendURL),
	})
	if err != nil {
		return domain.ReserveResult{}, err
	}

	now := s.clock.Now().UTC()
	booking := domain.Booking{
		ID:                bookingID,
		WriterID:          writer.ID,
		SponsorID:         sponsor.ID,
		SlotDate:          slotDate,
		AdHeadline:        content.Headline,
		AdBody:            content.Body,
		AdCTAText:         content.CTAText,
		AdCTAURL:          content.CTAURL,
		AdImageURL:        content.ImageURL,
		Status:            domain.StatusPendingPayment,
		AmountCents:       writer.PricePerSlot,
		PlatformFeeCents:  feeCents,
		WriterPayoutCents: payoutCents,
		Currency:          writer.Currency,
		CheckoutRef:       checkout.CheckoutID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.LockWriterRow(ctx, tx, writer.ID); err != nil {
			return err
		}
		slots, err := s.repo.WriterSlotsPerWeek(ctx, tx, writer.ID)
		if err != nil {
			return err
		}
		blocked, err := s.repo.HasBlackout(ctx, tx, writer.ID, slotDate)
		if err != nil {
			return err
		}
		if blocked {
			return domain.ErrSlotNotAvailable
		}
		occupied, err := s.repo.CountOccupying(ctx, tx, writer.ID, slotDate)
		if err != nil {
			return err
		}
		if occupied >= int64(slots) {
			return domain.ErrSlotNotAvailable
		}
		return s.repo.Insert(ctx, tx, &booking)
	})
	if err != nil {
		return domain.ReserveResult{}, err
	}

	s.log.Info("slot reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("writer_id", writer.ID.String()),
		zap.String("slot_date", slotDate.Format("2006-01-02")),
	)

	return domain.ReserveResult{
		Booking:     booking,
		CheckoutURL: checkout.CheckoutURL,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, identity authdomain.Identity, id string) (domain.Detail, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return domain.Detail{}, err
	}
	detail, err := s.repo.FindDetail(ctx, s.db, bookingID)
	if err != nil {
		return domain.Detail{}, err
	}
	if detail == nil {
		return domain.Detail{}, domain.ErrNotFound
	}

	allowed, err := s.canView(ctx, identity, &detail.Booking)
	if err != nil {
		return domain.Detail{}, err
	}
	if !allowed {
		return domain.Detail{}, domain.ErrForbidden
	}
	return *detail, nil
}

func (s *Service) ListForSponsor(ctx context.Context, identity authdomain.Identity, filter domain.ListFilter, page pagination.Params) (pagination.Page[domain.Detail], error) {
	sponsor, err := s.sponsorRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return pagination.Page[domain.Detail]{}, err
	}
	if sponsor == nil {
		return pagination.Page[domain.Detail]{}, domain.ErrNoSponsorProfile
	}

	page = page.Validated()
	details, total, err := s.repo.ListForSponsor(ctx, s.db, sponsor.ID, filter, page)
	if err != nil {
		return pagination.Page[domain.Detail]{}, err
	}
	return pagination.NewPage(details, total, page), nil
}

func (s *Service) ListForWriter(ctx context.Context, identity authdomain.Identity, filter domain.ListFilter, page pagination.Params) (pagination.Page[domain.Detail], error) {
	writer, err := s.writerRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return pagination.Page[domain.Detail]{}, err
	}
	if writer == nil {
		return pagination.Page[domain.Detail]{}, domain.ErrNoWriterProfile
	}

	page = page.Validated()
	details, total, err := s.repo.ListForWriter(ctx, s.db, writer.ID, filter, page)
	if err != nil {
		return pagination.Page[domain.Detail]{}, err
	}
	return pagination.NewPage(details, total, page), nil
}

func (s *Service) UpcomingForWriter(ctx context.Context, identity authdomain.Identity) ([]domain.Detail, error) {
	writer, err := s.writerRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, domain.ErrNoWriterProfile
	}
	return s.repo.UpcomingForWriter(ctx, s.db, writer.ID, clock.Today(s.clock))
}

func (s *Service) UpdateAdContent(ctx context.Context, identity authdomain.Identity, id string, content domain.AdContent) (domain.Booking, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return domain.Booking{}, err
	}
	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking == nil {
		return domain.Booking{}, domain.ErrNotFound
	}

	sponsor, err := s.sponsorRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.Booking{}, err
	}
	if identity.Role != authdomain.RoleAdmin && (sponsor == nil || sponsor.ID != booking.SponsorID) {
		return domain.Booking{}, domain.ErrForbidden
	}

	// Copy is editable until the writer signs off.
	if booking.Status != domain.StatusPendingPayment && booking.Status != domain.StatusPaid {
		return domain.Booking{}, domain.ErrInvalidTransition
	}

	cleaned, err := domain.ValidateAdContent(content)
	if err != nil {
		return domain.Booking{}, err
	}

	now := s.clock.Now().UTC()
	if err := s.repo.UpdateAdContent(ctx, s.db, bookingID, cleaned, now); err != nil {
		return domain.Booking{}, err
	}

	booking.AdHeadline = cleaned.Headline
	booking.AdBody = cleaned.Body
	booking.AdCTAText = cleaned.CTAText
	booking.AdCTAURL = cleaned.CTAURL
	booking.AdImageURL = cleaned.ImageURL
	booking.UpdatedAt = now
	return *booking, nil
}

func (s *Service) Approve(ctx context.Context, identity authdomain.Identity, id string) error {
	booking, writer, err := s.getOwnedByWriter(ctx, identity, id)
	if err != nil {
		return err
	}

	ok, err := s.repo.UpdateStatus(ctx, s.db, booking.ID, domain.StatusApproved,
		domain.AllowedSources(domain.StatusApproved), s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}

	s.log.Info("booking approved", zap.String("booking_id", booking.ID.String()))
	s.notifySponsor(ctx, booking, writer, func(to string, data notify.BookingEmailData) {
		s.notifier.BookingApproved(ctx, to, data)
	})
	return nil
}

func (s *Service) Reject(ctx context.Context, identity authdomain.Identity, id string, reason string) error {
	booking, writer, err := s.getOwnedByWriter(ctx, identity, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(booking.Status, domain.StatusRejected) {
		return domain.ErrInvalidTransition
	}

	// Refund before the status flips. If the refund fails the booking
	// stays in place and the writer can retry. A refund webhook landing
	// between the transition check and here turns this into a second
	// refund of the same order; the guarded write below still fails
	// closed and the provider drops the repeat.
	if booking.ProviderOrderID != "" {
		if err := s.provider.RefundOrder(ctx, booking.ProviderOrderID); err != nil {
			return err
		}
	}

	ok, err := s.repo.UpdateStatus(ctx, s.db, booking.ID, domain.StatusRejected,
		domain.AllowedSources(domain.StatusRejected), s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}

	s.log.Info("booking rejected",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reason", reason),
	)
	s.notifySponsor(ctx, booking, writer, func(to string, data notify.BookingEmailData) {
		data.Reason = reason
		s.notifier.BookingRejected(ctx, to, data)
	})
	return nil
}

func (s *Service) Publish(ctx context.Context, identity authdomain.Identity, id string) error {
	booking, writer, err := s.getOwnedByWriter(ctx, identity, id)
	if err != nil {
		return err
	}

	ok, err := s.repo.UpdateStatus(ctx, s.db, booking.ID, domain.StatusPublished,
		domain.AllowedSources(domain.StatusPublished), s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}

	s.log.Info("booking published", zap.String("booking_id", booking.ID.String()))
	s.notifySponsor(ctx, booking, writer, func(to string, data notify.BookingEmailData) {
		s.notifier.BookingPublished(ctx, to, data)
	})
	return nil
}

func (s *Service) Cancel(ctx context.Context, identity authdomain.Identity, id string) error {
	bookingID, err := parseID(id)
	if err != nil {
		return err
	}
	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return domain.ErrNotFound
	}

	sponsor, err := s.sponsorRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return err
	}
	if identity.Role != authdomain.RoleAdmin && (sponsor == nil || sponsor.ID != booking.SponsorID) {
		return domain.ErrForbidden
	}

	ok, err := s.repo.UpdateStatus(ctx, s.db, booking.ID, domain.StatusCancelled,
		domain.AllowedSources(domain.StatusCancelled), s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *Service) MarkPaid(ctx context.Context, bookingID snowflake.ID, providerOrderID string) (domain.Status, error) {
	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return "", err
	}
	if booking == nil {
		return "", domain.ErrNotFound
	}

	// Replayed events land here after the first delivery already moved
	// the booking on. Report the current status and change nothing.
	if booking.Status != domain.StatusPendingPayment {
		return booking.Status, nil
	}

	if err := s.repo.SetProviderOrder(ctx, s.db, bookingID, providerOrderID); err != nil {
		return "", err
	}

	now := s.clock.Now().UTC()
	ok, err := s.repo.UpdateStatus(ctx, s.db, bookingID, domain.StatusPaid,
		domain.AllowedSources(domain.StatusPaid), now)
	if err != nil {
		return "", err
	}
	if !ok {
		// Lost the race against a concurrent delivery.
		current, err := s.repo.FindByID(ctx, s.db, bookingID)
		if err != nil || current == nil {
			return "", domain.ErrNotFound
		}
		return current.Status, nil
	}

	writer, err := s.writerRepo.FindByID(ctx, s.db, booking.WriterID)
	if err != nil {
		return "", err
	}

	final := domain.StatusPaid
	if writer != nil && writer.AutoApprove {
		approved, err := s.repo.UpdateStatus(ctx, s.db, bookingID, domain.StatusApproved,
			domain.AllowedSources(domain.StatusApproved), s.clock.Now().UTC())
		if err != nil {
			return "", err
		}
		if approved {
			final = domain.StatusApproved
			s.log.Info("booking auto-approved", zap.String("booking_id", bookingID.String()))
		}
	}

	s.notifySponsor(ctx, booking, writer, func(to string, data notify.BookingEmailData) {
		s.notifier.BookingConfirmed(ctx, to, data)
	})
	if writer != nil && final == domain.StatusPaid {
		if user, err := s.userRepo.FindUserByID(ctx, s.db, writer.UserID); err == nil && user != nil {
			s.notifier.NewBookingReceived(ctx, user.Email, notify.BookingEmailData{
				NewsletterName: writer.NewsletterName,
				SlotDate:       booking.SlotDate.Format("2006-01-02"),
				AmountCents:    booking.WriterPayoutCents,
				Currency:       booking.Currency,
				AdHeadline:     booking.AdHeadline,
			})
		}
	}

	return final, nil
}

func (s *Service) MarkRefundedByOrder(ctx context.Context, providerOrderID string) (domain.Status, error) {
	booking, err := s.repo.FindByProviderOrderID(ctx, s.db, providerOrderID)
	if err != nil {
		return "", err
	}
	if booking == nil {
		return "", domain.ErrNotFound
	}

	if !domain.CanTransition(booking.Status, domain.StatusRefunded) {
		// Published slots already ran; a late refund event does not
		// claw the placement back.
		return booking.Status, nil
	}

	ok, err := s.repo.UpdateStatus(ctx, s.db, booking.ID, domain.StatusRefunded,
		domain.AllowedSources(domain.StatusRefunded), s.clock.Now().UTC())
	if err != nil {
		return "", err
	}
	if !ok {
		current, err := s.repo.FindByID(ctx, s.db, booking.ID)
		if err != nil || current == nil {
			return "", domain.ErrNotFound
		}
		return current.Status, nil
	}

	s.log.Info("booking refunded", zap.String("booking_id", booking.ID.String()))

	writer, _ := s.writerRepo.FindByID(ctx, s.db, booking.WriterID)
	s.notifySponsor(ctx, booking, writer, func(to string, data notify.BookingEmailData) {
		s.notifier.BookingRefunded(ctx, to, data)
	})
	return domain.StatusRefunded, nil
}

func (s *Service) FindByID(ctx context.Context, id snowflake.ID) (*domain.Booking, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) getOwnedByWriter(ctx context.Context, identity authdomain.Identity, id string) (*domain.Booking, *writerdomain.Writer, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return nil, nil, err
	}
	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		return nil, nil, domain.ErrNotFound
	}

	writer, err := s.writerRepo.FindByID(ctx, s.db, booking.WriterID)
	if err != nil {
		return nil, nil, err
	}
	if writer == nil {
		return nil, nil, domain.ErrNotFound
	}
	if identity.Role != authdomain.RoleAdmin && writer.UserID != identity.UserID {
		return nil, nil, domain.ErrForbidden
	}
	return booking, writer, nil
}

func (s *Service) canView(ctx context.Context, identity authdomain.Identity, booking *domain.Booking) (bool, error) {
	if identity.Role == authdomain.RoleAdmin {
		return true, nil
	}
	writer, err := s.writerRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return false, err
	}
	if writer != nil && writer.ID == booking.WriterID {
		return true, nil
	}
	sponsor, err := s.sponsorRepo.FindByUserID(ctx, s.db, identity.UserID)
	if err != nil {
		return false, err
	}
	return sponsor != nil && sponsor.ID == booking.SponsorID, nil
}

func (s *Service) notifySponsor(ctx context.Context, booking *domain.Booking, writer *writerdomain.Writer, send func(to string, data notify.BookingEmailData)) {
	sponsor, err := s.sponsorRepo.FindByID(ctx, s.db, booking.SponsorID)
	if err != nil || sponsor == nil || sponsor.BillingEmail == "" {
		return
	}
	newsletterName := ""
	if writer != nil {
		newsletterName = writer.NewsletterName
	}
	send(sponsor.BillingEmail, notify.BookingEmailData{
		NewsletterName: newsletterName,
		SlotDate:       booking.SlotDate.Format("2006-01-02"),
		AmountCents:    booking.AmountCents,
		Currency:       booking.Currency,
		AdHeadline:     booking.AdHeadline,
	})
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
