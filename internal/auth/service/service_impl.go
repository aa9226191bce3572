package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/internal/auth/password"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Config,
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.AuthResponse{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return domain.AuthResponse{}, domain.ErrInvalidPassword
	}
	if !req.Role.Valid() || req.Role == domain.RoleAdmin {
		return domain.AuthResponse{}, domain.ErrInvalidRole
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	now := s.clock.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertUser(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.AuthResponse{}, domain.ErrEmailTaken
		}
		return domain.AuthResponse{}, err
	}

	token, err := s.issueSession(ctx, user.ID, now)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	s.log.Info("user signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return domain.AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}

	now := s.clock.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, s.db, user.ID, now); err != nil {
		return domain.AuthResponse{}, err
	}
	user.LastLoginAt = &now

	token, err := s.issueSession(ctx, user.ID, now)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{Token: token, User: *user}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.repo.DeleteSessionByTokenHash(ctx, s.db, hashToken(token))
}

func (s *Service) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	session, err := s.repo.FindSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		return domain.Identity{}, err
	}
	if session == nil || s.clock.Now().After(session.ExpiresAt) {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	user, err := s.repo.FindUserByID(ctx, s.db, session.UserID)
	if err != nil {
		return domain.Identity{}, err
	}
	if user == nil {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	return domain.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, identity domain.Identity) (domain.User, error) {
	user, err := s.repo.FindUserByID(ctx, s.db, identity.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) issueSession(ctx context.Context, userID snowflake.ID, now time.Time) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	ttl := time.Duration(s.cfg.AuthTokenTTLHours) * time.Hour
	session := domain.Session{
		ID:        s.genID.Generate(),
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return "", err
	}

	// Opportunistic cleanup keeps the table from accumulating stale rows.
	if err := s.repo.DeleteExpiredSessions(ctx, s.db, now); err != nil {
		s.log.Warn("failed to prune expired sessions", zap.Error(err))
	}

	return token, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
