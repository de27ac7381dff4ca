package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinio/clinio_backend/internal/api/http/handler"
)

func (r *Router) registerCommissionRoutes(
	api fiber.Router,
	rh *handler.CommissionRuleHandler,
	ch *handler.CommissionHandler,
	clinicHeader fiber.Handler,
	actor fiber.Handler,
) {
	rules := api.Group("/commission-rules", clinicHeader)
	rules.Get("/", rh.List)
	rules.Post("/", rh.Create)
	rules.Get("/:id", rh.GetByID)
	rules.Put("/:id", rh.Update)
	rules.Delete("/:id", rh.Delete)

	commissions := api.Group("/commissions", clinicHeader)
	commissions.Get("/", ch.List)
	commissions.Get("/:id", ch.GetByID)
	commissions.Patch("/:id/pay", actor, ch.MarkPaid)
	commissions.Patch("/:id/cancel", actor, ch.Cancel)
	commissions.Delete("/:id", ch.Delete)
}
