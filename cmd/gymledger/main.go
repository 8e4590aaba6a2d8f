package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/joho/godotenv"
	"github.com/smallbiznis/gymledger/internal/apikey"
	"github.com/smallbiznis/gymledger/internal/audit"
	"github.com/smallbiznis/gymledger/internal/balance"
	"github.com/smallbiznis/gymledger/internal/billing"
	"github.com/smallbiznis/gymledger/internal/clock"
	"github.com/smallbiznis/gymledger/internal/config"
	"github.com/smallbiznis/gymledger/internal/customer"
	"github.com/smallbiznis/gymledger/internal/membership"
	"github.com/smallbiznis/gymledger/internal/migration"
	"github.com/smallbiznis/gymledger/internal/notification"
	"github.com/smallbiznis/gymledger/internal/observability"
	"github.com/smallbiznis/gymledger/internal/payment"
	"github.com/smallbiznis/gymledger/internal/plan"
	"github.com/smallbiznis/gymledger/internal/scheduler"
	"github.com/smallbiznis/gymledger/internal/seed"
	"github.com/smallbiznis/gymledger/internal/server"
	"github.com/smallbiznis/gymledger/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			return seed.EnsureMainAccount(conn)
		}),
		audit.Module,
		balance.Module,
		plan.Module,
		customer.Module,
		membership.Module,
		billing.Module,
		payment.Module,
		notification.Module,
		scheduler.Module,
		apikey.Module,
		server.Module,
	)
	app.Run()
}
