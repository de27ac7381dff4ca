package app

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/clinio/clinio_backend/config"
	"github.com/clinio/clinio_backend/internal/repository"
	"github.com/clinio/clinio_backend/internal/service/appointment"
	"github.com/clinio/clinio_backend/internal/service/billing"
	"github.com/clinio/clinio_backend/internal/service/commission"
	"github.com/clinio/clinio_backend/internal/service/pricing"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideCommissionService,
		ProvideBillingService,
		ProvidePricingService,
		ProvideAppointmentService,
	),
)

func ProvideCommissionService(store repository.Store, nc *nats.Conn) commission.Service {
	return commission.New(store, nc)
}

func ProvideBillingService(store repository.Store, comm commission.Service, nc *nats.Conn) billing.Service {
	return billing.New(store, comm, nc)
}

func ProvidePricingService(store repository.Store, cfg *config.Config) pricing.Service {
	return pricing.New(store, cfg)
}

func ProvideAppointmentService(store repository.Store, pricingSvc pricing.Service, billingSvc billing.Service) appointment.Service {
	return appointment.New(store, pricingSvc, billingSvc)
}
