package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinio/clinio_backend/internal/api/http/handler"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	clinicHeader fiber.Handler,
	actor fiber.Handler,
) {
	appts := api.Group("/appointments", clinicHeader)

	appts.Get("/", ah.List)
	appts.Post("/", ah.Book)

	a := appts.Group("/:id")
	a.Get("/", ah.GetByID)
	a.Patch("/cancel", actor, ah.Cancel)
	a.Patch("/complete", actor, ah.Complete)
}
