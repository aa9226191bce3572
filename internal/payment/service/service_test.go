package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	authrepo "github.com/sponsorloop/sponsorloop/internal/auth/repository"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	bookingrepo "github.com/sponsorloop/sponsorloop/internal/booking/repository"
	bookingservice "github.com/sponsorloop/sponsorloop/internal/booking/service"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/notify"
	"github.com/sponsorloop/sponsorloop/internal/payment/domain"
	"github.com/sponsorloop/sponsorloop/internal/payment/repository"
	"github.com/sponsorloop/sponsorloop/internal/providers/email"
	paymentprovider "github.com/sponsorloop/sponsorloop/internal/providers/payment"
	sponsordomain "github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	sponsorrepo "github.com/sponsorloop/sponsorloop/internal/sponsor/repository"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
	writerrepo "github.com/sponsorloop/sponsorloop/internal/writer/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const goodSignature = "valid"

type stubProvider struct{}

func (stubProvider) Name() string     { return "stub" }
func (stubProvider) Configured() bool { return true }

func (stubProvider) CreateCheckout(ctx context.Context, params paymentprovider.CreateCheckoutParams) (*paymentprovider.Checkout, error) {
	return &paymentprovider.Checkout{CheckoutID: "chk_1", CheckoutURL: "https://pay.example.com"}, nil
}

func (stubProvider) RefundOrder(ctx context.Context, orderID string) error { return nil }

func (stubProvider) VerifySignature(payload []byte, signature string) error {
	if signature != goodSignature {
		return paymentprovider.ErrInvalidSignature
	}
	return nil
}

func (stubProvider) ParseEvent(payload []byte) (*paymentprovider.WebhookEvent, error) {
	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

type fixture struct {
	svc     domain.Service
	booking bookingdomain.Service
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&authdomain.User{},
		&writerdomain.Writer{},
		&writerdomain.BlackoutDate{},
		&sponsordomain.Sponsor{},
		&bookingdomain.Booking{},
		&domain.EventRecord{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("create snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.Config{FrontendURL: "https://app.example.com"}
	notifier := notify.New(notify.Params{
		Config: cfg,
		Log:    zap.NewNop(),
		Email:  &email.NoOpProvider{},
	})

	bookingSvc := bookingservice.New(bookingservice.Params{
		Config:      cfg,
		DB:          dbConn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Repo:        bookingrepo.Provide(),
		WriterRepo:  writerrepo.Provide(),
		SponsorRepo: sponsorrepo.Provide(),
		UserRepo:    authrepo.Provide(),
		Provider:    stubProvider{},
		Notifier:    notifier,
	})

	svc := New(Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     repository.Provide(),
		Booking:  bookingSvc,
		Provider: stubProvider{},
	})

	return &fixture{svc: svc, booking: bookingSvc, db: dbConn, node: node, clock: fake}
}

func (f *fixture) seedBooking(t *testing.T) *bookingdomain.Booking {
	t.Helper()

	writerUser := authdomain.User{
		ID: f.node.Generate(), Email: fmt.Sprintf("w%s@example.com", f.node.Generate()),
		PasswordHash: "x", Role: authdomain.RoleWriter,
	}
	sponsorUser := authdomain.User{
		ID: f.node.Generate(), Email: fmt.Sprintf("s%s@example.com", f.node.Generate()),
		PasswordHash: "x", Role: authdomain.RoleSponsor,
	}
	if err := f.db.Create(&writerUser).Error; err != nil {
		t.Fatalf("seed writer user: %v", err)
	}
	if err := f.db.Create(&sponsorUser).Error; err != nil {
		t.Fatalf("seed sponsor user: %v", err)
	}

	writer := writerdomain.Writer{
		ID: f.node.Generate(), UserID: writerUser.ID,
		Slug: fmt.Sprintf("letter-%s", f.node.Generate()), NewsletterName: "The Letter",
		PricePerSlot: 25000, Currency: "usd", LeadTimeDays: 7, SlotsPerWeek: 1, PlatformFeeBps: 1000,
	}
	if err := f.db.Create(&writer).Error; err != nil {
		t.Fatalf("seed writer: %v", err)
	}
	sponsor := sponsordomain.Sponsor{
		ID: f.node.Generate(), UserID: sponsorUser.ID,
		CompanyName: "Acme", BillingEmail: "billing@acme.com",
	}
	if err := f.db.Create(&sponsor).Error; err != nil {
		t.Fatalf("seed sponsor: %v", err)
	}

	result, err := f.booking.Reserve(context.Background(),
		authdomain.Identity{UserID: sponsorUser.ID, Role: authdomain.RoleSponsor},
		bookingdomain.ReserveRequest{
			WriterID: writer.ID.String(),
			SlotDate: clock.Today(f.clock).AddDate(0, 0, 14),
			AdContent: bookingdomain.AdContent{
				Headline: "Ship faster", Body: "Body", CTAURL: "https://acme.example.com",
			},
		})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	return &result.Booking
}

func orderCreatedPayload(bookingID snowflake.ID, orderID string, total int64) []byte {
	attrs, _ := json.Marshal(map[string]any{"total": total, "status": "paid"})
	payload, _ := json.Marshal(map[string]any{
		"meta": map[string]any{
			"event_name":  "order_created",
			"custom_data": map[string]string{"booking_id": bookingID.String()},
		},
		"data": map[string]any{
			"id":         orderID,
			"type":       "orders",
			"attributes": json.RawMessage(attrs),
		},
	})
	return payload
}

func orderRefundedPayload(orderID string) []byte {
	payload, _ := json.Marshal(map[string]any{
		"meta": map[string]any{"event_name": "order_refunded"},
		"data": map[string]any{"id": orderID, "type": "orders"},
	})
	return payload
}

func TestProcessWebhookBadSignature(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessWebhook(context.Background(), []byte(`{}`), "forged")
	if err != paymentprovider.ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestProcessWebhookInvalidPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessWebhook(context.Background(), []byte("not json"), goodSignature)
	if err != domain.ErrInvalidPayload {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}

	_, err = f.svc.ProcessWebhook(context.Background(), []byte(`{"meta":{},"data":{}}`), goodSignature)
	if err != domain.ErrInvalidPayload {
		t.Fatalf("expected ErrInvalidPayload for missing event name, got %v", err)
	}
}

func TestProcessWebhookIgnoresUnknownEvents(t *testing.T) {
	f := newFixture(t)

	payload := []byte(`{"meta":{"event_name":"subscription_created"},"data":{"id":"sub-1","type":"subscriptions"}}`)
	result, err := f.svc.ProcessWebhook(context.Background(), payload, goodSignature)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Outcome != domain.OutcomeIgnored {
		t.Fatalf("expected ignored, got %s", result.Outcome)
	}
}

func TestProcessWebhookOrderCreated(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)

	result, err := f.svc.ProcessWebhook(context.Background(),
		orderCreatedPayload(booking.ID, "order-1", booking.AmountCents), goodSignature)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Outcome != domain.OutcomeProcessed {
		t.Fatalf("expected processed, got %s", result.Outcome)
	}
	if result.BookingStatus != string(bookingdomain.StatusPaid) {
		t.Fatalf("expected paid, got %s", result.BookingStatus)
	}

	stored, err := f.booking.FindByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("find booking: %v", err)
	}
	if stored.Status != bookingdomain.StatusPaid || stored.ProviderOrderID != "order-1" {
		t.Fatalf("booking not settled: status=%s order=%q", stored.Status, stored.ProviderOrderID)
	}
}

func TestProcessWebhookDeduplicatesReplay(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payload := orderCreatedPayload(booking.ID, "order-1", booking.AmountCents)

	if _, err := f.svc.ProcessWebhook(context.Background(), payload, goodSignature); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	result, err := f.svc.ProcessWebhook(context.Background(), payload, goodSignature)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Outcome != domain.OutcomeDuplicate {
		t.Fatalf("expected duplicate, got %s", result.Outcome)
	}

	var count int64
	if err := f.db.Model(&domain.EventRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored event, got %d", count)
	}
}

// flakyBookingService fails the first markPaidFailures calls before
// delegating, standing in for a transient database error mid-apply.
type flakyBookingService struct {
	bookingdomain.Service
	markPaidFailures int
	markPaidCalls    int
}

func (f *flakyBookingService) MarkPaid(ctx context.Context, bookingID snowflake.ID, providerOrderID string) (bookingdomain.Status, error) {
	f.markPaidCalls++
	if f.markPaidCalls <= f.markPaidFailures {
		return "", errors.New("connection reset")
	}
	return f.Service.MarkPaid(ctx, bookingID, providerOrderID)
}

func TestProcessWebhookRetriesAfterApplyFailure(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)
	payload := orderCreatedPayload(booking.ID, "order-1", booking.AmountCents)

	flaky := &flakyBookingService{Service: f.booking, markPaidFailures: 1}
	svc := New(Params{
		DB:       f.db,
		Log:      zap.NewNop(),
		GenID:    f.node,
		Clock:    f.clock,
		Repo:     repository.Provide(),
		Booking:  flaky,
		Provider: stubProvider{},
	})

	if _, err := svc.ProcessWebhook(context.Background(), payload, goodSignature); err == nil {
		t.Fatal("expected first delivery to fail")
	}

	// The event record committed on the failed delivery. The provider's
	// retry must still move the booking instead of being swallowed.
	result, err := svc.ProcessWebhook(context.Background(), payload, goodSignature)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if result.Outcome != domain.OutcomeDuplicate {
		t.Fatalf("expected duplicate outcome on retry, got %s", result.Outcome)
	}
	if result.BookingStatus != string(bookingdomain.StatusPaid) {
		t.Fatalf("expected paid, got %s", result.BookingStatus)
	}

	stored, err := f.booking.FindByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("find booking: %v", err)
	}
	if stored.Status != bookingdomain.StatusPaid {
		t.Fatalf("booking stuck in %s after retry", stored.Status)
	}
	if flaky.markPaidCalls != 2 {
		t.Fatalf("expected 2 apply attempts, got %d", flaky.markPaidCalls)
	}
}

func TestProcessWebhookAmountMismatchStillSettles(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)

	result, err := f.svc.ProcessWebhook(context.Background(),
		orderCreatedPayload(booking.ID, "order-1", booking.AmountCents+500), goodSignature)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.BookingStatus != string(bookingdomain.StatusPaid) {
		t.Fatalf("expected paid despite mismatch, got %s", result.BookingStatus)
	}
}

func TestProcessWebhookUnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessWebhook(context.Background(),
		orderCreatedPayload(f.node.Generate(), "order-9", 25000), goodSignature)
	if err != domain.ErrUnknownBooking {
		t.Fatalf("expected ErrUnknownBooking, got %v", err)
	}
}

func TestProcessWebhookOrderRefunded(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t)

	if _, err := f.svc.ProcessWebhook(context.Background(),
		orderCreatedPayload(booking.ID, "order-1", booking.AmountCents), goodSignature); err != nil {
		t.Fatalf("order created: %v", err)
	}

	result, err := f.svc.ProcessWebhook(context.Background(), orderRefundedPayload("order-1"), goodSignature)
	if err != nil {
		t.Fatalf("order refunded: %v", err)
	}
	if result.BookingStatus != string(bookingdomain.StatusRefunded) {
		t.Fatalf("expected refunded, got %s", result.BookingStatus)
	}

	stored, _ := f.booking.FindByID(context.Background(), booking.ID)
	if stored.Status != bookingdomain.StatusRefunded {
		t.Fatalf("expected refunded booking, got %s", stored.Status)
	}
}
