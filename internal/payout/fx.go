package payout

import (
	"github.com/sponsorloop/sponsorloop/internal/payout/repository"
	"github.com/sponsorloop/sponsorloop/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
