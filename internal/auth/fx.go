package auth

import (
	"github.com/sponsorloop/sponsorloop/internal/auth/repository"
	"github.com/sponsorloop/sponsorloop/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
