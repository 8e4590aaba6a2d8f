package notification

import (
	"github.com/smallbiznis/gymledger/internal/notification/outbox"
	"github.com/smallbiznis/gymledger/internal/notification/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("notification",
	fx.Provide(repository.Provide),
	fx.Provide(outbox.NewSender),
)
