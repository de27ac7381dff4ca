package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/service/pricing"
)

type PriceHandler struct {
	svc pricing.Service
}

func NewPriceHandler(svc pricing.Service) *PriceHandler {
	return &PriceHandler{svc: svc}
}

// POST /prices
func (h *PriceHandler) Create(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	var body struct {
		Name  string          `json:"name" validate:"required"`
		Value decimal.Decimal `json:"value"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&body); err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.svc.SetPrice(c.Context(), clinicID, body.Name, body.Value)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidPrice) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return created(c, p)
}

// GET /prices/lookup?procedure=...
func (h *PriceHandler) Lookup(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	procedure := c.Query("procedure")
	if procedure == "" {
		return badRequest(c, "procedure query parameter is required")
	}

	value, source, err := h.svc.ValueFor(c.Context(), clinicID, procedure)
	if err != nil {
		return internalError(c)
	}
	return ok(c, fiber.Map{"value": value, "source": source})
}
