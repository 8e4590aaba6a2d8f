package apikey

import (
	"github.com/smallbiznis/gymledger/internal/apikey/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey",
	fx.Provide(repository.Provide),
)
