package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics tracks payment webhook deliveries by event and outcome.
type WebhookMetrics struct {
	deliveries *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

var (
	webhookMetricsOnce sync.Once
	webhookMetrics     *WebhookMetrics
)

// Webhook returns the singleton webhook metrics registry.
func Webhook() *WebhookMetrics {
	webhookMetricsOnce.Do(func() {
		webhookMetrics = newWebhookMetrics(prometheus.DefaultRegisterer)
	})
	return webhookMetrics
}

// ResetWebhookMetricsForTest resets the webhook metrics singleton for tests.
func ResetWebhookMetricsForTest() {
	webhookMetricsOnce = sync.Once{}
	webhookMetrics = nil
}

func newWebhookMetrics(registerer prometheus.Registerer) *WebhookMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sponsorloop_webhook_deliveries_total",
		Help: "Payment webhook deliveries by event name and outcome.",
	}, []string{"event", "outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sponsorloop_webhook_failures_total",
		Help: "Payment webhook deliveries rejected before processing.",
	}, []string{"reason"})

	registerer.MustRegister(deliveries, failures)

	return &WebhookMetrics{deliveries: deliveries, failures: failures}
}

func (m *WebhookMetrics) Delivery(event, outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(event, outcome).Inc()
}

func (m *WebhookMetrics) Failure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}
