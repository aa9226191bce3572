package sponsor

import (
	"github.com/sponsorloop/sponsorloop/internal/sponsor/repository"
	"github.com/sponsorloop/sponsorloop/internal/sponsor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sponsor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
