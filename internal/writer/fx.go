package writer

import (
	"github.com/sponsorloop/sponsorloop/internal/writer/repository"
	"github.com/sponsorloop/sponsorloop/internal/writer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("writer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
