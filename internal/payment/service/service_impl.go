package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/observability/metrics"
	"github.com/sponsorloop/sponsorloop/internal/payment/domain"
	paymentprovider "github.com/sponsorloop/sponsorloop/internal/providers/payment"
	"github.com/sponsorloop/sponsorloop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Booking  bookingdomain.Service
	Provider paymentprovider.Provider
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	booking  bookingdomain.Service
	provider paymentprovider.Provider
	metrics  *metrics.WebhookMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		booking:  p.Booking,
		provider: p.Provider,
		metrics:  metrics.Webhook(),
	}
}

func (s *Service) ProcessWebhook(ctx context.Context, payload []byte, signature string) (domain.Result, error) {
	if err := s.provider.VerifySignature(payload, signature); err != nil {
		s.metrics.Failure("bad_signature")
		return domain.Result{}, err
	}

	event, err := s.provider.ParseEvent(payload)
	if err != nil {
		s.metrics.Failure("bad_payload")
		return domain.Result{}, domain.ErrInvalidPayload
	}
	eventName := event.Meta.EventName
	if eventName == "" || event.Data.ID == "" {
		s.metrics.Failure("bad_payload")
		return domain.Result{}, domain.ErrInvalidPayload
	}

	// Events the reconciler does not act on are acknowledged without a
	// dedup record so the processor stops redelivering them.
	if eventName != paymentprovider.EventOrderCreated && eventName != paymentprovider.EventOrderRefunded {
		s.metrics.Delivery(eventName, string(domain.OutcomeIgnored))
		return domain.Result{Outcome: domain.OutcomeIgnored, EventName: eventName}, nil
	}

	record := domain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        s.provider.Name(),
		ProviderEventID: eventName + ":" + event.Data.ID,
		EventName:       eventName,
		Payload:         datatypes.JSON(payload),
		CreatedAt:       s.clock.Now().UTC(),
	}
	// The record only labels the delivery as a replay. A stored event
	// can also mean an earlier delivery committed the record and then
	// failed mid-apply, so every delivery still runs the transition;
	// the booking status guards make re-applying a no-op.
	outcome := domain.OutcomeProcessed
	if err := s.repo.InsertEvent(ctx, s.db, &record); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return domain.Result{}, err
		}
		s.log.Info("webhook replay",
			zap.String("event", eventName),
			zap.String("provider_event_id", record.ProviderEventID),
		)
		outcome = domain.OutcomeDuplicate
	}

	var status bookingdomain.Status
	switch eventName {
	case paymentprovider.EventOrderCreated:
		status, err = s.applyOrderCreated(ctx, event)
	case paymentprovider.EventOrderRefunded:
		status, err = s.applyOrderRefunded(ctx, event)
	}
	if err != nil {
		return domain.Result{}, err
	}

	s.metrics.Delivery(eventName, string(outcome))
	return domain.Result{
		Outcome:       outcome,
		EventName:     eventName,
		BookingStatus: string(status),
	}, nil
}

func (s *Service) applyOrderCreated(ctx context.Context, event *paymentprovider.WebhookEvent) (bookingdomain.Status, error) {
	raw := strings.TrimSpace(event.CustomData("booking_id"))
	bookingID, err := snowflake.ParseString(raw)
	if err != nil || bookingID == 0 {
		s.log.Warn("order event without booking reference",
			zap.String("order_id", event.Data.ID),
			zap.String("booking_id", raw),
		)
		return "", domain.ErrUnknownBooking
	}

	booking, err := s.booking.FindByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking == nil {
		return "", domain.ErrUnknownBooking
	}

	// A price drift between checkout and webhook is reconciled manually.
	// The order still settles the booking it references.
	if attrs, ok := event.OrderAttributes(); ok && attrs.Total != booking.AmountCents {
		s.log.Warn("order amount differs from booking",
			zap.String("booking_id", bookingID.String()),
			zap.Int64("order_total", attrs.Total),
			zap.Int64("booking_amount", booking.AmountCents),
		)
	}

	status, err := s.booking.MarkPaid(ctx, bookingID, event.Data.ID)
	if errors.Is(err, bookingdomain.ErrNotFound) {
		return "", domain.ErrUnknownBooking
	}
	return status, err
}

func (s *Service) applyOrderRefunded(ctx context.Context, event *paymentprovider.WebhookEvent) (bookingdomain.Status, error) {
	status, err := s.booking.MarkRefundedByOrder(ctx, event.Data.ID)
	if errors.Is(err, bookingdomain.ErrNotFound) {
		s.log.Warn("refund event for unknown order", zap.String("order_id", event.Data.ID))
		return "", domain.ErrUnknownBooking
	}
	return status, err
}
