package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/service/commission"
)

type CommissionRuleHandler struct {
	svc commission.Service
}

func NewCommissionRuleHandler(svc commission.Service) *CommissionRuleHandler {
	return &CommissionRuleHandler{svc: svc}
}

func mapRuleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, commission.ErrRuleNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, commission.ErrInvalidRule):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

type commissionRuleBody struct {
	BeneficiaryType string          `json:"beneficiary_type" validate:"required,oneof=professional seller reception"`
	ProfessionalID  string          `json:"professional_id" validate:"omitempty,uuid"`
	BeneficiaryID   string          `json:"beneficiary_id" validate:"omitempty,uuid"`
	Procedure       *string         `json:"procedure"`
	Weekday         *int            `json:"weekday" validate:"omitempty,min=0,max=6"`
	CalcType        string          `json:"calc_type" validate:"required,oneof=percentage fixed"`
	CalcUnit        string          `json:"calc_unit" validate:"required,oneof=appointment ml arch unit session"`
	Value           decimal.Decimal `json:"value"`
	IsActive        *bool           `json:"is_active"`
	Notes           string          `json:"notes"`
}

func (b *commissionRuleBody) toInput() (commission.RuleInput, error) {
	professionalID, err := parseOptionalUUID(b.ProfessionalID)
	if err != nil {
		return commission.RuleInput{}, err
	}
	beneficiaryID, err := parseOptionalUUID(b.BeneficiaryID)
	if err != nil {
		return commission.RuleInput{}, err
	}

	in := commission.RuleInput{
		BeneficiaryType: model.BeneficiaryType(b.BeneficiaryType),
		ProfessionalID:  professionalID,
		BeneficiaryID:   beneficiaryID,
		Procedure:       b.Procedure,
		CalcType:        model.CalcType(b.CalcType),
		CalcUnit:        model.CalcUnit(b.CalcUnit),
		Value:           b.Value,
		IsActive:        true,
		Notes:           b.Notes,
	}
	if b.Weekday != nil {
		wd := time.Weekday(*b.Weekday)
		in.Weekday = &wd
	}
	if b.IsActive != nil {
		in.IsActive = *b.IsActive
	}
	return in, nil
}

// POST /commission-rules
func (h *CommissionRuleHandler) Create(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	var body commissionRuleBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&body); err != nil {
		return badRequest(c, err.Error())
	}

	in, err := body.toInput()
	if err != nil {
		return badRequest(c, "invalid identifier in request body")
	}

	rule, err := h.svc.CreateRule(c.Context(), clinicID, in)
	if err != nil {
		return mapRuleError(c, err)
	}
	return created(c, rule)
}

// PUT /commission-rules/:id
func (h *CommissionRuleHandler) Update(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	var body commissionRuleBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&body); err != nil {
		return badRequest(c, err.Error())
	}

	in, err := body.toInput()
	if err != nil {
		return badRequest(c, "invalid identifier in request body")
	}

	rule, err := h.svc.UpdateRule(c.Context(), clinicID, ruleID, in)
	if err != nil {
		return mapRuleError(c, err)
	}
	return ok(c, rule)
}

// GET /commission-rules
func (h *CommissionRuleHandler) List(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	rules, err := h.svc.ListRules(c.Context(), clinicID)
	if err != nil {
		return mapRuleError(c, err)
	}
	return ok(c, rules)
}

// GET /commission-rules/:id
func (h *CommissionRuleHandler) GetByID(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	rule, err := h.svc.GetRule(c.Context(), clinicID, ruleID)
	if err != nil {
		return mapRuleError(c, err)
	}
	return ok(c, rule)
}

// DELETE /commission-rules/:id
func (h *CommissionRuleHandler) Delete(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	ruleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	if err := h.svc.DeleteRule(c.Context(), clinicID, ruleID); err != nil {
		return mapRuleError(c, err)
	}
	return noContent(c)
}
