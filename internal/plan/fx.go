package plan

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymledger/internal/cache"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	"github.com/smallbiznis/gymledger/internal/plan/repository"
	"github.com/smallbiznis/gymledger/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() cache.Cache[snowflake.ID, plandomain.MembershipPlan] {
		return cache.NewTTLCache[snowflake.ID, plandomain.MembershipPlan]()
	}),
	fx.Provide(service.NewService),
)
