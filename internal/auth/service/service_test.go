package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/internal/auth/repository"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (authdomain.Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("create snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		Config: config.Config{AuthTokenTTLHours: 24},
		DB:     dbConn,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Repo:   repository.Provide(),
	})
	return svc, fake
}

func TestSignupAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Signup(context.Background(), authdomain.SignupRequest{
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		Role:     authdomain.RoleWriter,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token")
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", resp.User.Email)
	}

	identity, err := svc.Authenticate(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != resp.User.ID {
		t.Fatalf("expected user %s, got %s", resp.User.ID, identity.UserID)
	}
	if identity.Role != authdomain.RoleWriter {
		t.Fatalf("expected writer role, got %s", identity.Role)
	}
}

func TestSignupRejectsAdminRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), authdomain.SignupRequest{
		Email:    "boss@example.com",
		Password: "correct-horse",
		Role:     authdomain.RoleAdmin,
	})
	if err != authdomain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	req := authdomain.SignupRequest{
		Email:    "bob@example.com",
		Password: "correct-horse",
		Role:     authdomain.RoleSponsor,
	}
	if _, err := svc.Signup(context.Background(), req); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), req); err != authdomain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), authdomain.SignupRequest{
		Email:    "carol@example.com",
		Password: "correct-horse",
		Role:     authdomain.RoleWriter,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "carol@example.com",
		Password: "wrong-horse",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, fake := newTestService(t)

	resp, err := svc.Signup(context.Background(), authdomain.SignupRequest{
		Email:    "dave@example.com",
		Password: "correct-horse",
		Role:     authdomain.RoleSponsor,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	fake.Advance(25 * time.Hour)

	if _, err := svc.Authenticate(context.Background(), resp.Token); err != authdomain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Signup(context.Background(), authdomain.SignupRequest{
		Email:    "erin@example.com",
		Password: "correct-horse",
		Role:     authdomain.RoleWriter,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), resp.Token); err != authdomain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
