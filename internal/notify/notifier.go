package notify

import (
	"context"
	"fmt"

	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Notifier sends booking lifecycle emails. Delivery is best-effort:
// failures are logged and never bubble up into the calling flow.
type Notifier struct {
	cfg   config.Config
	log   *zap.Logger
	email email.Provider
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Email  email.Provider
}

func New(p Params) *Notifier {
	return &Notifier{
		cfg:   p.Config,
		log:   p.Log.Named("notify"),
		email: p.Email,
	}
}

var Module = fx.Module("notify",
	fx.Provide(New),
)

type BookingEmailData struct {
	NewsletterName string
	SlotDate       string
	AmountCents    int64
	Currency       string
	AdHeadline     string
	Reason         string
}

func (n *Notifier) BookingConfirmed(ctx context.Context, to string, data BookingEmailData) {
	subject := fmt.Sprintf("Booking confirmed: %s on %s", data.NewsletterName, data.SlotDate)
	body := fmt.Sprintf(
		`<p>Your ad slot in <strong>%s</strong> on %s is confirmed.</p>
		<p>Amount: %s</p>
		<p><a href="%s/dashboard/bookings">View your bookings</a></p>`,
		data.NewsletterName, data.SlotDate, formatAmount(data.AmountCents, data.Currency), n.cfg.FrontendURL,
	)
	n.send(ctx, to, subject, body)
}

func (n *Notifier) NewBookingReceived(ctx context.Context, to string, data BookingEmailData) {
	subject := fmt.Sprintf("New sponsorship booking for %s", data.SlotDate)
	body := fmt.Sprintf(
		`<p>A sponsor booked your %s slot.</p>
		<p>Headline: %s</p>
		<p><a href="%s/dashboard/bookings">Review and approve</a></p>`,
		data.SlotDate, data.AdHeadline, n.cfg.FrontendURL,
	)
	n.send(ctx, to, subject, body)
}

func (n *Notifier) BookingApproved(ctx context.Context, to string, data BookingEmailData) {
	subject := fmt.Sprintf("Booking approved: %s on %s", data.NewsletterName, data.SlotDate)
	body := fmt.Sprintf(
		`<p>Your ad in <strong>%s</strong> on %s has been approved.</p>
		<p><a href="%s/dashboard/bookings">View your bookings</a></p>`,
		data.NewsletterName, data.SlotDate, n.cfg.FrontendURL,
	)
	n.send(ctx, to, subject, body)
}

func (n *Notifier) BookingRejected(ctx context.Context, to string, data BookingEmailData) {
	subject := fmt.Sprintf("Booking rejected: %s on %s", data.NewsletterName, data.SlotDate)
	reason := ""
	if data.Reason != "" {
		reason = fmt.Sprintf("<p>Reason: %s</p>", data.Reason)
	}
	body := fmt.Sprintf(
		`<p>Your ad in <strong>%s</strong> on %s was rejected. The payment of %s will be refunded.</p>%s`,
		data.NewsletterName, data.SlotDate, formatAmount(data.AmountCents, data.Currency), reason,
	)
	n.send(ctx, to, subject, body)
}

func (n *Notifier) BookingPublished(ctx context.Context, to string, data BookingEmailData) {
	subject := fmt.Sprintf("Your ad was published in %s", data.NewsletterName)
	body := fmt.Sprintf(
		`<p>Your ad "%s" ran in <strong>%s</strong> on %s.</p>
		<p><a href="%s/dashboard/bookings">View your bookings</a></p>`,
		data.AdHeadline, data.NewsletterName, data.SlotDate, n.cfg.FrontendURL,
	)
	n.send(ctx, to, subject, body)
}

func (n *Notifier) BookingRefunded(ctx context.Context, to string, data BookingEmailData) {
	subject := fmt.Sprintf("Booking refunded: %s on %s", data.NewsletterName, data.SlotDate)
	body := fmt.Sprintf(
		`<p>Your booking in <strong>%s</strong> on %s was refunded (%s).</p>`,
		data.NewsletterName, data.SlotDate, formatAmount(data.AmountCents, data.Currency),
	)
	n.send(ctx, to, subject, body)
}

func (n *Notifier) send(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := n.email.Send(ctx, []string{to}, subject, body); err != nil {
		n.log.Warn("failed to send notification email",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}
