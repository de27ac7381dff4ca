package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/service/billing"
)

type PaymentHandler struct {
	svc billing.Service
}

func NewPaymentHandler(svc billing.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func mapPaymentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrPaymentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, billing.ErrAppointmentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, billing.ErrPaymentCancelled):
		return conflict(c, err.Error())
	case errors.Is(err, billing.ErrPaymentNotConfirmed):
		return conflict(c, err.Error())
	case errors.Is(err, billing.ErrInvalidPayment):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /payments
func (h *PaymentHandler) Create(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}
	actorID, valid := actorIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing acting user")
	}

	var body struct {
		AppointmentID    string          `json:"appointment_id" validate:"required,uuid"`
		Amount           decimal.Decimal `json:"amount"`
		Quantity         int             `json:"quantity" validate:"omitempty,min=1"`
		Description      string          `json:"description"`
		AllowWithoutRule bool            `json:"allow_without_rule"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&body); err != nil {
		return badRequest(c, err.Error())
	}

	appointmentID, err := uuid.Parse(body.AppointmentID)
	if err != nil {
		return badRequest(c, "invalid appointment_id")
	}

	p, err := h.svc.Create(c.Context(), billing.CreateInput{
		ClinicID:         clinicID,
		AppointmentID:    appointmentID,
		Amount:           body.Amount,
		Quantity:         body.Quantity,
		Description:      body.Description,
		AllowWithoutRule: body.AllowWithoutRule,
		ActorID:          actorID,
	})
	if err != nil {
		return mapPaymentError(c, err)
	}
	return created(c, p)
}

// GET /payments/:id
func (h *PaymentHandler) GetByID(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	p, err := h.svc.Get(c.Context(), clinicID, id)
	if err != nil {
		return mapPaymentError(c, err)
	}
	return ok(c, p)
}

// PATCH /payments/:id/confirm
func (h *PaymentHandler) Confirm(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}
	actorID, valid := actorIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing acting user")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	var body struct {
		ReceptionID string `json:"reception_id"`
	}
	// Body is optional: the reception id only matters when reception rules
	// should participate in generation.
	_ = c.Bind().Body(&body)
	receptionID, err := parseOptionalUUID(body.ReceptionID)
	if err != nil {
		return badRequest(c, "invalid reception id")
	}

	res, err := h.svc.Confirm(c.Context(), clinicID, id, actorID, receptionID)
	if err != nil {
		return mapPaymentError(c, err)
	}
	return ok(c, confirmResponse(res))
}

// PATCH /payments/:id/cancel
func (h *PaymentHandler) Cancel(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}
	actorID, valid := actorIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing acting user")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	p, err := h.svc.Cancel(c.Context(), clinicID, id, actorID)
	if err != nil {
		return mapPaymentError(c, err)
	}
	return ok(c, p)
}

// POST /payments/:id/retry-generation
func (h *PaymentHandler) RetryGeneration(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}
	actorID, valid := actorIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing acting user")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	var body struct {
		AllowWithoutRule bool   `json:"allow_without_rule"`
		ReceptionID      string `json:"reception_id"`
	}
	// Body is optional: a bare retry keeps the previously recorded flag.
	_ = c.Bind().Body(&body)
	receptionID, err := parseOptionalUUID(body.ReceptionID)
	if err != nil {
		return badRequest(c, "invalid reception id")
	}

	res, err := h.svc.RetryGeneration(c.Context(), clinicID, id, actorID, receptionID, body.AllowWithoutRule)
	if err != nil {
		return mapPaymentError(c, err)
	}
	return ok(c, confirmResponse(res))
}

func confirmResponse(res *billing.ConfirmResult) fiber.Map {
	out := fiber.Map{
		"payment":     res.Payment,
		"commissions": res.Commissions,
		"total":       res.Total,
	}
	if res.GenerationWarning != "" {
		out["warning"] = res.GenerationWarning
	}
	if res.WithoutProfessionalRule {
		out["without_professional_rule"] = true
	}
	return out
}
