package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const lemonAPIBaseURL = "https://api.lemonsqueezy.com/v1"

type LemonSqueezyConfig struct {
	APIKey        string
	StoreID       string
	VariantID     string
	WebhookSecret string
}

// LemonSqueezy implements Provider against the Lemon Squeezy hosted
// checkout API. Payments are one-off orders against a single ad-slot
// variant; the real price is set per checkout via custom_price.
type LemonSqueezy struct {
	cfg    LemonSqueezyConfig
	client *http.Client
}

func NewLemonSqueezy(cfg LemonSqueezyConfig) *LemonSqueezy {
	return &LemonSqueezy{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *LemonSqueezy) Name() string { return "lemonsqueezy" }

func (p *LemonSqueezy) Configured() bool { return true }

func (p *LemonSqueezy) CreateCheckout(ctx context.Context, params CreateCheckoutParams) (*Checkout, error) {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "checkouts",
			"attributes": map[string]interface{}{
				"custom_price": params.AmountCents,
				"product_options": map[string]interface{}{
					"name":         fmt.Sprintf("Ad Slot: %s", params.NewsletterName),
					"description":  fmt.Sprintf("Ad placement in %s for %s", params.NewsletterName, params.SlotDate),
					"redirect_url": params.SuccessURL,
				},
				"checkout_data": map[string]interface{}{
					"email": params.SponsorEmail,
					"custom": map[string]string{
						"booking_id": params.BookingID,
						"writer_id":  params.WriterID,
						"sponsor_id": params.SponsorID,
					},
				},
			},
			"relationships": map[string]interface{}{
				"store": map[string]interface{}{
					"data": map[string]string{"type": "stores", "id": p.cfg.StoreID},
				},
				"variant": map[string]interface{}{
					"data": map[string]string{"type": "variants", "id": p.cfg.VariantID},
				},
			},
		},
	}

	var resp struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				URL string `json:"url"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := p.do(ctx, http.MethodPost, "/checkouts", body, &resp); err != nil {
		return nil, err
	}

	return &Checkout{
		CheckoutID:  resp.Data.ID,
		CheckoutURL: resp.Data.Attributes.URL,
	}, nil
}

func (p *LemonSqueezy) RefundOrder(ctx context.Context, orderID string) error {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "orders",
			"id":   orderID,
			"attributes": map[string]interface{}{
				"refund": true,
			},
		},
	}
	return p.do(ctx, http.MethodPatch, "/orders/"+orderID, body, nil)
}

func (p *LemonSqueezy) VerifySignature(payload []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(p.cfg.WebhookSecret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}

func (p *LemonSqueezy) ParseEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if strings.TrimSpace(event.Meta.EventName) == "" {
		return nil, fmt.Errorf("webhook payload missing event name")
	}
	return &event, nil
}

func (p *LemonSqueezy) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, lemonAPIBaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Content-Type", "application/vnd.api+json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("lemonsqueezy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("lemonsqueezy %s %s returned %d: %s", method, path, resp.StatusCode, string(detail))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
