package providers

import (
	"github.com/sponsorloop/sponsorloop/internal/providers/email"
	"github.com/sponsorloop/sponsorloop/internal/providers/payment"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	payment.Module,
)
