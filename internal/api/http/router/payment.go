package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinio/clinio_backend/internal/api/http/handler"
)

func (r *Router) registerPaymentRoutes(
	api fiber.Router,
	ph *handler.PaymentHandler,
	clinicHeader fiber.Handler,
	actor fiber.Handler,
) {
	payments := api.Group("/payments", clinicHeader)

	payments.Post("/", actor, ph.Create)
	payments.Get("/:id", ph.GetByID)
	payments.Patch("/:id/confirm", actor, ph.Confirm)
	payments.Patch("/:id/cancel", actor, ph.Cancel)
	payments.Post("/:id/retry-generation", actor, ph.RetryGeneration)
}
