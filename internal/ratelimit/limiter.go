package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/sponsorloop/sponsorloop/internal/config"
)

const (
	keyAuth    = "ratelimit:auth:%s"
	keyBooking = "ratelimit:booking:%s"
)

// RequestLimiter throttles credential guessing on the auth routes and
// checkout spam on booking creation. A nil limiter allows everything.
type RequestLimiter struct {
	enabled bool

	bucket *TokenBucket

	authRate     float64
	authBurst    int
	bookingRate  float64
	bookingBurst int
}

func NewRequestLimiter(cfg config.Config) (*RequestLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.AuthRate <= 0 || limitCfg.AuthBurst <= 0 {
		return nil, errors.New("auth rate limit must be positive")
	}
	if limitCfg.BookingRate <= 0 || limitCfg.BookingBurst <= 0 {
		return nil, errors.New("booking rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &RequestLimiter{
		enabled:      true,
		bucket:       NewTokenBucket(client),
		authRate:     limitCfg.AuthRate,
		authBurst:    limitCfg.AuthBurst,
		bookingRate:  limitCfg.BookingRate,
		bookingBurst: limitCfg.BookingBurst,
	}, nil
}

func (l *RequestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowAuth is keyed on the caller address, the only identity known
// before the credentials check.
func (l *RequestLimiter) AllowAuth(ctx context.Context, callerKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAuth, strings.TrimSpace(callerKey)), l.authRate, l.authBurst)
}

// AllowBooking is keyed on the authenticated user.
func (l *RequestLimiter) AllowBooking(ctx context.Context, userKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyBooking, strings.TrimSpace(userKey)), l.bookingRate, l.bookingBurst)
}
