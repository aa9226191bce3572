package availability

import (
	"github.com/sponsorloop/sponsorloop/internal/availability/repository"
	"github.com/sponsorloop/sponsorloop/internal/availability/service"
	"go.uber.org/fx"
)

var Module = fx.Module("availability.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
