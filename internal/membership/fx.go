package membership

import (
	"github.com/smallbiznis/gymledger/internal/membership/repository"
	"github.com/smallbiznis/gymledger/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewActivator),
	fx.Provide(service.NewQueryService),
)
