package booking

import (
	"github.com/sponsorloop/sponsorloop/internal/booking/repository"
	"github.com/sponsorloop/sponsorloop/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
