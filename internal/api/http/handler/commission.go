package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
	"github.com/clinio/clinio_backend/internal/service/commission"
)

type CommissionHandler struct {
	svc commission.Service
}

func NewCommissionHandler(svc commission.Service) *CommissionHandler {
	return &CommissionHandler{svc: svc}
}

func mapCommissionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, commission.ErrCommissionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, commission.ErrAlreadyPaid):
		return conflict(c, err.Error())
	case errors.Is(err, commission.ErrNotPending):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /commissions
func (h *CommissionHandler) List(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	var q struct {
		BeneficiaryID string `query:"beneficiary_id"`
		Status        string `query:"status"`
		From          string `query:"from"`
		To            string `query:"to"`
		Page          int    `query:"page"`
		PerPage       int    `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	f := repository.CommissionFilter{
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	if q.BeneficiaryID != "" {
		id, err := uuid.Parse(q.BeneficiaryID)
		if err != nil {
			return badRequest(c, "invalid beneficiary_id")
		}
		f.BeneficiaryID = &id
	}
	if q.Status != "" {
		status := model.CommissionStatus(q.Status)
		if !status.Valid() {
			return badRequest(c, "invalid status")
		}
		f.Status = &status
	}
	if q.From != "" {
		if t, err := time.Parse(time.RFC3339, q.From); err == nil {
			f.From = &t
		}
	}
	if q.To != "" {
		if t, err := time.Parse(time.RFC3339, q.To); err == nil {
			f.To = &t
		}
	}

	commissions, err := h.svc.List(c.Context(), clinicID, f)
	if err != nil {
		return mapCommissionError(c, err)
	}
	return ok(c, commissions)
}

// GET /commissions/:id
func (h *CommissionHandler) GetByID(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid commission id")
	}

	com, err := h.svc.Get(c.Context(), clinicID, id)
	if err != nil {
		return mapCommissionError(c, err)
	}
	return ok(c, com)
}

// PATCH /commissions/:id/pay
func (h *CommissionHandler) MarkPaid(c fiber.Ctx) error {
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
		return badRequest(c, "invalid commission id")
	}

	com, err := h.svc.MarkPaid(c.Context(), clinicID, id, actorID)
	if err != nil {
		return mapCommissionError(c, err)
	}
	return ok(c, com)
}

// PATCH /commissions/:id/cancel
func (h *CommissionHandler) Cancel(c fiber.Ctx) error {
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
		return badRequest(c, "invalid commission id")
	}

	com, err := h.svc.Cancel(c.Context(), clinicID, id, actorID)
	if err != nil {
		return mapCommissionError(c, err)
	}
	return ok(c, com)
}

// DELETE /commissions/:id
func (h *CommissionHandler) Delete(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid commission id")
	}

	if err := h.svc.Delete(c.Context(), clinicID, id); err != nil {
		return mapCommissionError(c, err)
	}
	return noContent(c)
}
