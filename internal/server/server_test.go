package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	paymentdomain "github.com/sponsorloop/sponsorloop/internal/payment/domain"
	paymentprovider "github.com/sponsorloop/sponsorloop/internal/providers/payment"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	identity authdomain.Identity
	authErr  error
}

func (f *fakeAuthService) Signup(ctx context.Context, req authdomain.SignupRequest) (authdomain.AuthResponse, error) {
	return authdomain.AuthResponse{}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (authdomain.AuthResponse, error) {
	return authdomain.AuthResponse{}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, token string) error {
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, token string) (authdomain.Identity, error) {
	if f.authErr != nil {
		return authdomain.Identity{}, f.authErr
	}
	return f.identity, nil
}

func (f *fakeAuthService) GetUser(ctx context.Context, identity authdomain.Identity) (authdomain.User, error) {
	return authdomain.User{ID: identity.UserID, Email: identity.Email, Role: identity.Role}, nil
}

type fakePaymentService struct {
	result paymentdomain.Result
	err    error

	payload   []byte
	signature string
}

func (f *fakePaymentService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (paymentdomain.Result, error) {
	f.payload = payload
	f.signature = signature
	return f.result, f.err
}

func newTestServer(auth authdomain.Service, payments paymentdomain.Service) *Server {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:     engine,
		log:        zap.NewNop(),
		authsvc:    auth,
		paymentSvc: payments,
	}
	srv.registerWebhookRoutes()

	return srv
}

func TestPaymentWebhookProcessed(t *testing.T) {
	payments := &fakePaymentService{
		result: paymentdomain.Result{
			Outcome:   paymentdomain.OutcomeProcessed,
			EventName: "order_created",
		},
	}
	srv := newTestServer(&fakeAuthService{}, payments)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lemonsqueezy", bytes.NewBufferString(`{"meta":{"event_name":"order_created"}}`))
	req.Header.Set("X-Signature", "sig")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if payments.signature != "sig" {
		t.Fatalf("expected signature header to reach the reconciler, got %q", payments.signature)
	}
	if len(payments.payload) == 0 {
		t.Fatal("expected raw body to reach the reconciler")
	}
}

func TestPaymentWebhookBadSignatureReturns401(t *testing.T) {
	payments := &fakePaymentService{err: paymentprovider.ErrInvalidSignature}
	srv := newTestServer(&fakeAuthService{}, payments)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lemonsqueezy", bytes.NewBufferString(`{}`))
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestPaymentWebhookBadPayloadReturns400(t *testing.T) {
	payments := &fakePaymentService{err: paymentdomain.ErrInvalidPayload}
	srv := newTestServer(&fakeAuthService{}, payments)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lemonsqueezy", bytes.NewBufferString(`not-json`))
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	srv := newTestServer(&fakeAuthService{}, &fakePaymentService{})
	srv.engine.GET("/protected", srv.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredSetsIdentity(t *testing.T) {
	identity := authdomain.Identity{
		UserID: snowflake.ID(42),
		Email:  "writer@example.com",
		Role:   authdomain.RoleWriter,
	}
	srv := newTestServer(&fakeAuthService{identity: identity}, &fakePaymentService{})

	var seen authdomain.Identity
	srv.engine.GET("/protected", srv.AuthRequired(), func(c *gin.Context) {
		seen, _ = identityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if seen.UserID != identity.UserID || seen.Role != identity.Role {
		t.Fatalf("expected identity %v in context, got %v", identity, seen)
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	identity := authdomain.Identity{UserID: snowflake.ID(7), Role: authdomain.RoleWriter}
	srv := newTestServer(&fakeAuthService{identity: identity}, &fakePaymentService{})
	srv.engine.GET("/admin-only", srv.AuthRequired(), srv.RequireRole(authdomain.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"slot conflict", bookingdomain.ErrSlotNotAvailable, http.StatusConflict},
		{"invalid transition", bookingdomain.ErrInvalidTransition, http.StatusBadRequest},
		{"not found", bookingdomain.ErrNotFound, http.StatusNotFound},
		{"forbidden", bookingdomain.ErrForbidden, http.StatusForbidden},
		{"bad credentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"payments off", paymentprovider.ErrNotConfigured, http.StatusServiceUnavailable},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, _ := mapError(tc.err)
		if status != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.status, status)
		}
	}
}
