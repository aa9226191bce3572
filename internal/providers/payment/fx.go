package payment

import (
	"github.com/sponsorloop/sponsorloop/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.payment",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if !cfg.LemonSqueezy.Configured() {
		log.Warn("payment provider not configured, checkout disabled")
		return Disabled{}
	}
	return NewLemonSqueezy(LemonSqueezyConfig{
		APIKey:        cfg.LemonSqueezy.APIKey,
		StoreID:       cfg.LemonSqueezy.StoreID,
		VariantID:     cfg.LemonSqueezy.VariantID,
		WebhookSecret: cfg.LemonSqueezy.WebhookSecret,
	})
}
