package payment

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotConfigured is returned by the disabled provider when checkout
	// features are used without payment credentials.
	ErrNotConfigured    = errors.New("payment_provider_not_configured")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
)

type CreateCheckoutParams struct {
	BookingID      string
	WriterID       string
	SponsorID      string
	SponsorEmail   string
	NewsletterName string
	SlotDate       string
	AmountCents    int64
	SuccessURL     string
}

type Checkout struct {
	CheckoutID  string
	CheckoutURL string
}

const (
	EventOrderCreated  = "order_created"
	EventOrderRefunded = "order_refunded"
)

type WebhookMeta struct {
	EventName  string            `json:"event_name"`
	CustomData map[string]string `json:"custom_data"`
}

type WebhookData struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

type WebhookEvent struct {
	Meta WebhookMeta `json:"meta"`
	Data WebhookData `json:"data"`
}

func (e *WebhookEvent) CustomData(key string) string {
	return e.Meta.CustomData[key]
}

// OrderAttributes is the subset of the provider's order payload the
// reconciler cares about.
type OrderAttributes struct {
	Identifier  string `json:"identifier"`
	OrderNumber int64  `json:"order_number"`
	UserEmail   string `json:"user_email"`
	Currency    string `json:"currency"`
	Total       int64  `json:"total"`
	Status      string `json:"status"`
	Refunded    bool   `json:"refunded"`
	RefundedAt  string `json:"refunded_at"`
}

func (e *WebhookEvent) OrderAttributes() (OrderAttributes, bool) {
	if e.Data.Type != "orders" || len(e.Data.Attributes) == 0 {
		return OrderAttributes{}, false
	}
	var attrs OrderAttributes
	if err := json.Unmarshal(e.Data.Attributes, &attrs); err != nil {
		return OrderAttributes{}, false
	}
	return attrs, true
}

// Provider abstracts the hosted-checkout payment processor.
type Provider interface {
	Name() string
	Configured() bool
	CreateCheckout(ctx context.Context, params CreateCheckoutParams) (*Checkout, error)
	RefundOrder(ctx context.Context, orderID string) error
	VerifySignature(payload []byte, signature string) error
	ParseEvent(payload []byte) (*WebhookEvent, error)
}

// Disabled satisfies Provider when no processor credentials are present.
// Read paths still work so the marketplace stays browsable.
type Disabled struct{}

func (Disabled) Name() string     { return "disabled" }
func (Disabled) Configured() bool { return false }

func (Disabled) CreateCheckout(ctx context.Context, params CreateCheckoutParams) (*Checkout, error) {
	return nil, ErrNotConfigured
}

func (Disabled) RefundOrder(ctx context.Context, orderID string) error {
	return ErrNotConfigured
}

func (Disabled) VerifySignature(payload []byte, signature string) error {
	return ErrNotConfigured
}

func (Disabled) ParseEvent(payload []byte) (*WebhookEvent, error) {
	return nil, ErrNotConfigured
}
