package payment

import (
	"github.com/sponsorloop/sponsorloop/internal/payment/repository"
	"github.com/sponsorloop/sponsorloop/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
