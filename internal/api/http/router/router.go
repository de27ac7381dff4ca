package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/clinio/clinio_backend/config"
	"github.com/clinio/clinio_backend/internal/api/http/handler"
	"github.com/clinio/clinio_backend/internal/api/http/middleware"
	"github.com/clinio/clinio_backend/internal/repository"
	"github.com/clinio/clinio_backend/internal/service/appointment"
	"github.com/clinio/clinio_backend/internal/service/billing"
	"github.com/clinio/clinio_backend/internal/service/commission"
	"github.com/clinio/clinio_backend/internal/service/pricing"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg            *config.Config
	Redis          *redis.Client
	Store          repository.Store
	CommissionSvc  commission.Service
	BillingSvc     billing.Service
	AppointmentSvc appointment.Service
	PricingSvc     pricing.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	clinicHeader := middleware.ClinicHeader(r.p.Store)
	actor := middleware.Actor()

	// 3. Initialize Handlers
	clinicH := handler.NewClinicHandler(r.p.Store)
	ruleH := handler.NewCommissionRuleHandler(r.p.CommissionSvc)
	commissionH := handler.NewCommissionHandler(r.p.CommissionSvc)
	paymentH := handler.NewPaymentHandler(r.p.BillingSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	priceH := handler.NewPriceHandler(r.p.PricingSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerClinicRoutes(api, clinicH, priceH, clinicHeader)
	r.registerCommissionRoutes(api, ruleH, commissionH, clinicHeader, actor)
	r.registerPaymentRoutes(api, paymentH, clinicHeader, actor)
	r.registerAppointmentRoutes(api, appointmentH, clinicHeader, actor)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
