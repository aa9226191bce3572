package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	authrepo "github.com/sponsorloop/sponsorloop/internal/auth/repository"
	authservice "github.com/sponsorloop/sponsorloop/internal/auth/service"
	availabilityrepo "github.com/sponsorloop/sponsorloop/internal/availability/repository"
	availabilityservice "github.com/sponsorloop/sponsorloop/internal/availability/service"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	bookingrepo "github.com/sponsorloop/sponsorloop/internal/booking/repository"
	bookingservice "github.com/sponsorloop/sponsorloop/internal/booking/service"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/notify"
	paymentdomain "github.com/sponsorloop/sponsorloop/internal/payment/domain"
	paymentrepo "github.com/sponsorloop/sponsorloop/internal/payment/repository"
	paymentservice "github.com/sponsorloop/sponsorloop/internal/payment/service"
	payoutdomain "github.com/sponsorloop/sponsorloop/internal/payout/domain"
	payoutrepo "github.com/sponsorloop/sponsorloop/internal/payout/repository"
	payoutservice "github.com/sponsorloop/sponsorloop/internal/payout/service"
	"github.com/sponsorloop/sponsorloop/internal/providers/email"
	paymentprovider "github.com/sponsorloop/sponsorloop/internal/providers/payment"
	"github.com/sponsorloop/sponsorloop/internal/server"
	sponsordomain "github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	sponsorrepo "github.com/sponsorloop/sponsorloop/internal/sponsor/repository"
	sponsorservice "github.com/sponsorloop/sponsorloop/internal/sponsor/service"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
	writerrepo "github.com/sponsorloop/sponsorloop/internal/writer/repository"
	writerservice "github.com/sponsorloop/sponsorloop/internal/writer/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSignature = "test-signature"

type fakeProvider struct {
	checkouts []paymentprovider.CreateCheckoutParams
	refunds   []string
}

func (f *fakeProvider) Name() string     { return "fake" }
func (f *fakeProvider) Configured() bool { return true }

func (f *fakeProvider) CreateCheckout(ctx context.Context, params paymentprovider.CreateCheckoutParams) (*paymentprovider.Checkout, error) {
	f.checkouts = append(f.checkouts, params)
	return &paymentprovider.Checkout{
		CheckoutID:  fmt.Sprintf("chk_%d", len(f.checkouts)),
		CheckoutURL: "https://checkout.example.com/session",
	}, nil
}

func (f *fakeProvider) RefundOrder(ctx context.Context, orderID string) error {
	f.refunds = append(f.refunds, orderID)
	return nil
}

func (f *fakeProvider) VerifySignature(payload []byte, signature string) error {
	if signature != testSignature {
		return paymentprovider.ErrInvalidSignature
	}
	return nil
}

func (f *fakeProvider) ParseEvent(payload []byte) (*paymentprovider.WebhookEvent, error) {
	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

type env struct {
	srv      *httptest.Server
	db       *gorm.DB
	clock    *clock.FakeClock
	provider *fakeProvider
}

func startEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2edb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&writerdomain.Writer{},
		&writerdomain.BlackoutDate{},
		&sponsordomain.Sponsor{},
		&bookingdomain.Booking{},
		&paymentdomain.EventRecord{},
		&payoutdomain.Payout{},
		&payoutdomain.PayoutBooking{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("create snowflake node: %v", err)
	}

	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	provider := &fakeProvider{}
	cfg := config.Config{
		Environment:       "test",
		FrontendURL:       "https://app.example.com",
		AuthTokenTTLHours: 24,
	}
	log := zap.NewNop()
	platform := config.NewStaticPlatformHolder(config.DefaultPlatformConfig())

	notifier := notify.New(notify.Params{Config: cfg, Log: log, Email: &email.NoOpProvider{}})

	authSvc := authservice.New(authservice.Params{
		Config: cfg,
		DB:     dbConn,
		Log:    log,
		GenID:  node,
		Clock:  fakeClock,
		Repo:   authrepo.Provide(),
	})
	writerSvc := writerservice.New(writerservice.Params{
		DB:       dbConn,
		Log:      log,
		GenID:    node,
		Clock:    fakeClock,
		Platform: platform,
		Repo:     writerrepo.Provide(),
	})
	sponsorSvc := sponsorservice.New(sponsorservice.Params{
		DB:    dbConn,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  sponsorrepo.Provide(),
	})
	availabilitySvc := availabilityservice.New(availabilityservice.Params{
		DB:         dbConn,
		Log:        log,
		Clock:      fakeClock,
		Platform:   platform,
		Repo:       availabilityrepo.Provide(),
		WriterRepo: writerrepo.Provide(),
	})
	bookingSvc := bookingservice.New(bookingservice.Params{
		Config:      cfg,
		DB:          dbConn,
		Log:         log,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        bookingrepo.Provide(),
		WriterRepo:  writerrepo.Provide(),
		SponsorRepo: sponsorrepo.Provide(),
		UserRepo:    authrepo.Provide(),
		Provider:    provider,
		Notifier:    notifier,
	})
	paymentSvc := paymentservice.New(paymentservice.Params{
		DB:       dbConn,
		Log:      log,
		GenID:    node,
		Clock:    fakeClock,
		Repo:     paymentrepo.Provide(),
		Booking:  bookingSvc,
		Provider: provider,
	})
	payoutSvc := payoutservice.New(payoutservice.Params{
		DB:         dbConn,
		Log:        log,
		GenID:      node,
		Clock:      fakeClock,
		Repo:       payoutrepo.Provide(),
		WriterRepo: writerrepo.Provide(),
	})

	engine := server.NewEngine(cfg, log)
	srv := server.NewServer(server.ServerParams{
		Gin:             engine,
		Cfg:             cfg,
		DB:              dbConn,
		Log:             log,
		GenID:           node,
		Authsvc:         authSvc,
		WriterSvc:       writerSvc,
		SponsorSvc:      sponsorSvc,
		AvailabilitySvc: availabilitySvc,
		BookingSvc:      bookingSvc,
		PaymentSvc:      paymentSvc,
		PayoutSvc:       payoutSvc,
	})

	httpSrv := httptest.NewServer(srv.Engine())
	t.Cleanup(httpSrv.Close)

	return &env{srv: httpSrv, db: dbConn, clock: fakeClock, provider: provider}
}

func (e *env) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %s: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func (e *env) webhook(t *testing.T, signature string, payload map[string]any) (int, map[string]any) {
	t.Helper()

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encode webhook payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/webhooks/lemonsqueezy", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("build webhook request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", signature)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("webhook request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func signup(t *testing.T, e *env, email, role string) string {
	t.Helper()

	status, body := e.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"email":      email,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "correct-horse-battery",
		"role":       role,
	})
	if status != http.StatusCreated {
		t.Fatalf("signup %s: expected status 201, got %d: %v", email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("signup %s: expected a token in response %v", email, body)
	}
	return token
}

func stringField(t *testing.T, body map[string]any, key string) string {
	t.Helper()
	value, _ := body[key].(string)
	if value == "" {
		t.Fatalf("expected %q in response %v", key, body)
	}
	return value
}

func orderCreatedPayload(orderID, bookingID string, total int64) map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"event_name":  "order_created",
			"custom_data": map[string]string{"booking_id": bookingID},
		},
		"data": map[string]any{
			"id":   orderID,
			"type": "orders",
			"attributes": map[string]any{
				"identifier": orderID,
				"currency":   "usd",
				"total":      total,
				"status":     "paid",
			},
		},
	}
}

func TestBookingLifecycle(t *testing.T) {
	e := startEnv(t)

	writerToken := signup(t, e, "writer@example.com", "writer")
	sponsorToken := signup(t, e, "sponsor@example.com", "sponsor")

	status, writerProfile := e.request(t, http.MethodPost, "/api/v1/writers", writerToken, map[string]any{
		"newsletter_name": "Deploy Friday",
		"price_per_slot":  25000,
		"lead_time_days":  7,
		"slots_per_week":  1,
	})
	if status != http.StatusCreated {
		t.Fatalf("create writer profile: expected status 201, got %d: %v", status, writerProfile)
	}
	writerID := stringField(t, writerProfile, "id")
	slug := stringField(t, writerProfile, "slug")

	status, sponsorProfile := e.request(t, http.MethodPost, "/api/v1/sponsors", sponsorToken, map[string]any{
		"company_name":  "Acme Devtools",
		"billing_email": "billing@acme.example.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("create sponsor profile: expected status 201, got %d: %v", status, sponsorProfile)
	}

	status, availability := e.request(t, http.MethodGet, "/api/v1/availability/"+slug, "", nil)
	if status != http.StatusOK {
		t.Fatalf("availability by slug: expected status 200, got %d: %v", status, availability)
	}
	slots, _ := availability["available_slots"].([]any)
	if len(slots) == 0 {
		t.Fatalf("expected open slots in %v", availability)
	}
	firstSlot, _ := slots[0].(map[string]any)
	slotDate, _ := firstSlot["available_date"].(string)
	if len(slotDate) < 10 {
		t.Fatalf("expected a slot date in %v", firstSlot)
	}
	slotDate = slotDate[:10]

	status, reserveBody := e.request(t, http.MethodPost, "/api/v1/bookings", sponsorToken, map[string]any{
		"writer_id":   writerID,
		"slot_date":   slotDate,
		"ad_headline": "Ship faster with Acme",
		"ad_body":     "Acme Devtools cuts your release cycle in half.",
		"ad_cta_url":  "https://acme.example.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("reserve: expected status 201, got %d: %v", status, reserveBody)
	}
	checkoutURL, _ := reserveBody["checkout_url"].(string)
	if checkoutURL == "" {
		t.Fatalf("expected checkout_url in %v", reserveBody)
	}
	booking, _ := reserveBody["booking"].(map[string]any)
	bookingID := stringField(t, booking, "id")

	// Double booking the same slot must conflict.
	status, conflict := e.request(t, http.MethodPost, "/api/v1/bookings", sponsorToken, map[string]any{
		"writer_id":   writerID,
		"slot_date":   slotDate,
		"ad_headline": "Second ad",
		"ad_body":     "Should not fit.",
		"ad_cta_url":  "https://acme.example.com",
	})
	if status != http.StatusConflict {
		t.Fatalf("double booking: expected status 409, got %d: %v", status, conflict)
	}

	// Unsigned webhooks are rejected before touching the booking.
	status, _ = e.webhook(t, "bogus", orderCreatedPayload("order-1", bookingID, 25000))
	if status != http.StatusUnauthorized {
		t.Fatalf("unsigned webhook: expected status 401, got %d", status)
	}

	status, webhookBody := e.webhook(t, testSignature, orderCreatedPayload("order-1", bookingID, 25000))
	if status != http.StatusOK {
		t.Fatalf("order_created webhook: expected status 200, got %d: %v", status, webhookBody)
	}
	if webhookBody["status"] != "processed" {
		t.Fatalf("expected processed outcome, got %v", webhookBody)
	}

	// Redelivery is acknowledged as a duplicate and leaves the booking untouched.
	status, replay := e.webhook(t, testSignature, orderCreatedPayload("order-1", bookingID, 25000))
	if status != http.StatusOK || replay["status"] != "duplicate" {
		t.Fatalf("replayed webhook: expected duplicate outcome, got %d: %v", status, replay)
	}

	status, detail := e.request(t, http.MethodGet, "/api/v1/bookings/"+bookingID, writerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get booking: expected status 200, got %d: %v", status, detail)
	}
	if detail["status"] != "paid" {
		t.Fatalf("expected booking to be paid, got %v", detail["status"])
	}

	status, body := e.request(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/approve", writerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("approve: expected status 200, got %d: %v", status, body)
	}

	status, body = e.request(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/publish", writerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("publish: expected status 200, got %d: %v", status, body)
	}

	// Sponsors cannot drive writer transitions.
	status, body = e.request(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/approve", sponsorToken, nil)
	if status != http.StatusForbidden && status != http.StatusBadRequest {
		t.Fatalf("sponsor approve: expected status 403 or 400, got %d: %v", status, body)
	}

	status, summary := e.request(t, http.MethodGet, "/api/v1/payouts/summary", writerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("payout summary: expected status 200, got %d: %v", status, summary)
	}
	available, _ := summary["available_cents"].(float64)
	if available != 22500 {
		t.Fatalf("expected 22500 available cents after fee, got %v", summary)
	}

	status, payoutBody := e.request(t, http.MethodPost, "/api/v1/payouts/request", writerToken, map[string]any{})
	if status != http.StatusCreated {
		t.Fatalf("request payout: expected status 201, got %d: %v", status, payoutBody)
	}
	if payoutBody["status"] != "processing" {
		t.Fatalf("expected processing payout, got %v", payoutBody)
	}
	if amount, _ := payoutBody["amount_cents"].(float64); amount != 22500 {
		t.Fatalf("expected payout of 22500 cents, got %v", payoutBody)
	}

	// The booking is claimed; a second request has nothing to pay.
	status, body = e.request(t, http.MethodPost, "/api/v1/payouts/request", writerToken, map[string]any{})
	if status != http.StatusBadRequest {
		t.Fatalf("second payout request: expected status 400, got %d: %v", status, body)
	}
}

func TestBookingRefundLifecycle(t *testing.T) {
	e := startEnv(t)

	writerToken := signup(t, e, "writer2@example.com", "writer")
	sponsorToken := signup(t, e, "sponsor2@example.com", "sponsor")

	status, writerProfile := e.request(t, http.MethodPost, "/api/v1/writers", writerToken, map[string]any{
		"newsletter_name": "The Build Log",
		"price_per_slot":  10000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create writer profile: expected status 201, got %d: %v", status, writerProfile)
	}
	writerID := stringField(t, writerProfile, "id")

	status, _ = e.request(t, http.MethodPost, "/api/v1/sponsors", sponsorToken, map[string]any{
		"company_name":  "Orbit Analytics",
		"billing_email": "billing@orbit.example.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("create sponsor profile: expected status 201, got %d", status)
	}

	status, slotsBody := e.request(t, http.MethodGet, "/api/v1/writers/"+writerID+"/availability", "", nil)
	if status != http.StatusOK {
		t.Fatalf("availability: expected status 200, got %d: %v", status, slotsBody)
	}
	slots, _ := slotsBody["available_slots"].([]any)
	if len(slots) == 0 {
		t.Fatalf("expected open slots in %v", slotsBody)
	}
	firstSlot, _ := slots[0].(map[string]any)
	slotDate, _ := firstSlot["available_date"].(string)
	slotDate = slotDate[:10]

	status, reserveBody := e.request(t, http.MethodPost, "/api/v1/bookings", sponsorToken, map[string]any{
		"writer_id":   writerID,
		"slot_date":   slotDate,
		"ad_headline": "Meet Orbit",
		"ad_body":     "Analytics your team will actually read.",
		"ad_cta_url":  "https://orbit.example.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("reserve: expected status 201, got %d: %v", status, reserveBody)
	}
	booking, _ := reserveBody["booking"].(map[string]any)
	bookingID := stringField(t, booking, "id")

	status, _ = e.webhook(t, testSignature, orderCreatedPayload("order-9", bookingID, 10000))
	if status != http.StatusOK {
		t.Fatalf("order_created webhook: expected status 200, got %d", status)
	}

	// The writer turns the ad down; the platform refunds the order first.
	status, body := e.request(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/reject", writerToken, map[string]any{
		"reason": "not a fit for the audience",
	})
	if status != http.StatusOK {
		t.Fatalf("reject: expected status 200, got %d: %v", status, body)
	}
	if len(e.provider.refunds) != 1 || e.provider.refunds[0] != "order-9" {
		t.Fatalf("expected a refund for order-9, got %v", e.provider.refunds)
	}

	// The slot opens back up for other sponsors.
	status, recheck := e.request(t, http.MethodGet, "/api/v1/writers/"+writerID+"/slots/"+slotDate, "", nil)
	if status != http.StatusOK {
		t.Fatalf("slot check: expected status 200, got %d: %v", status, recheck)
	}
	if recheck["available"] != true {
		t.Fatalf("expected slot to be available after rejection, got %v", recheck)
	}

	// Rejected bookings never count toward payouts.
	status, summary := e.request(t, http.MethodGet, "/api/v1/payouts/summary", writerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("payout summary: expected status 200, got %d", status)
	}
	if available, _ := summary["available_cents"].(float64); available != 0 {
		t.Fatalf("expected no payable balance, got %v", summary)
	}
}
