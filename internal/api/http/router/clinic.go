package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinio/clinio_backend/internal/api/http/handler"
)

func (r *Router) registerClinicRoutes(
	api fiber.Router,
	ch *handler.ClinicHandler,
	ph *handler.PriceHandler,
	clinicHeader fiber.Handler,
) {
	api.Post("/clinics", ch.Create)

	staff := api.Group("/staff", clinicHeader)
	staff.Post("/", ch.CreateStaff)
	staff.Get("/:id", ch.GetStaff)

	prices := api.Group("/prices", clinicHeader)
	prices.Post("/", ph.Create)
	prices.Get("/lookup", ph.Lookup)
}
