package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidPayload = errors.New("invalid_webhook_payload")
	ErrUnknownBooking = errors.New("unknown_booking")
)

// Service reconciles payment processor webhooks against bookings.
type Service interface {
	// ProcessWebhook verifies, dedupes and applies a raw webhook
	// delivery. Signature failures surface the provider's
	// ErrInvalidSignature so the transport can answer 401.
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (Result, error)
}
