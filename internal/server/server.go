package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apikeydomain "github.com/smallbiznis/gymledger/internal/apikey/domain"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
	"github.com/smallbiznis/gymledger/internal/config"
	customerdomain "github.com/smallbiznis/gymledger/internal/customer/domain"
	membershipservice "github.com/smallbiznis/gymledger/internal/membership/service"
	"github.com/smallbiznis/gymledger/internal/observability/logger"
	"github.com/smallbiznis/gymledger/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/gymledger/internal/payment/domain"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
	"github.com/smallbiznis/gymledger/internal/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	APIKeys     apikeydomain.Repository
	Customers   customerdomain.Service
	Plans       plandomain.Service
	Bills       billingdomain.Service
	Payments    paymentdomain.Service
	Memberships membershipservice.QueryService
	Scheduler   *scheduler.Scheduler
	HTTPMetrics *metrics.HTTPMetrics
}

type Server struct {
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	apiKeys     apikeydomain.Repository
	customers   customerdomain.Service
	plans       plandomain.Service
	bills       billingdomain.Service
	payments    paymentdomain.Service
	memberships membershipservice.QueryService
	scheduler   *scheduler.Scheduler
	limiter     *rateLimiter
}

func NewServer(p Params) *Server {
	limit := p.Config.Server.RateLimitPerMin
	if limit <= 0 {
		limit = 600
	}
	return &Server{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("server"),
		apiKeys:     p.APIKeys,
		customers:   p.Customers,
		plans:       p.Plans,
		bills:       p.Bills,
		payments:    p.Payments,
		memberships: p.Memberships,
		scheduler:   p.Scheduler,
		limiter:     newRateLimiter(limit, time.Minute),
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(p Params) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(p.HTTPMetrics))
	return engine
}

// RegisterRoutes mounts the API surface.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	v1.Use(s.APIKeyRequired())
	v1.Use(s.RateLimit())
	{
		v1.POST("/customers", s.createCustomer)
		v1.GET("/customers", s.listCustomers)
		v1.GET("/customers/:id", s.getCustomer)
		v1.GET("/customers/:id/bills", s.listCustomerBills)
		v1.GET("/customers/:id/memberships", s.listCustomerMemberships)
		v1.GET("/customers/:id/memberships/current", s.currentMembership)

		v1.POST("/plans", s.createPlan)
		v1.GET("/plans", s.listPlans)
		v1.DELETE("/plans/:id", s.archivePlan)

		v1.POST("/bills", s.createBill)
		v1.GET("/bills/:id", s.getBill)
		v1.PATCH("/bills/:id", s.updateBill)
		v1.DELETE("/bills/:id", s.deleteBill)
		v1.POST("/bills/:id/void", s.voidBill)
		v1.GET("/bills/:id/payments", s.listBillPayments)

		v1.POST("/payments", s.addPayment)
		v1.DELETE("/payments/:id", s.deletePayment)
	}

	if s.cfg.Server.EnableCronRoutes {
		cron := engine.Group("/cron")
		cron.Use(s.APIKeyRequired())
		{
			cron.POST("/memberships/expire", s.runExpirationSweep)
			cron.POST("/memberships/notify", s.runNotificationSweep)
		}
	}
}

// RunHTTP starts the HTTP listener on the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, s *Server, log *zap.Logger) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    s.cfg.Server.Address,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("address", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)
