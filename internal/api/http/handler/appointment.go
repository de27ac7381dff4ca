package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/service/appointment"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrProfessionalNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrAlreadyCompleted):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrAppointmentCancelled):
		return conflict(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidAppointment):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	var q struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	appts, err := h.svc.List(c.Context(), clinicID, q.Page, q.PerPage)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appts)
}

// GET /appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.GetByID(c.Context(), clinicID, apptID)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

// POST /appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	var body struct {
		ProfessionalID string `json:"professional_id" validate:"required,uuid"`
		PatientID      string `json:"patient_id" validate:"required,uuid"`
		SellerID       string `json:"seller_id" validate:"omitempty,uuid"`
		Procedure      string `json:"procedure" validate:"required"`
		Quantity       int    `json:"quantity" validate:"omitempty,min=1"`
		Date           string `json:"date" validate:"required"`
		LeadSource     string `json:"lead_source"`
		Notes          string `json:"notes"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&body); err != nil {
		return badRequest(c, err.Error())
	}

	professionalID, err := uuid.Parse(body.ProfessionalID)
	if err != nil {
		return badRequest(c, "invalid professional_id")
	}
	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}
	sellerID, err := parseOptionalUUID(body.SellerID)
	if err != nil {
		return badRequest(c, "invalid seller_id")
	}
	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	appt, err := h.svc.Book(c.Context(), clinicID, appointment.BookRequest{
		ProfessionalID: professionalID,
		PatientID:      patientID,
		SellerID:       sellerID,
		Procedure:      body.Procedure,
		Quantity:       body.Quantity,
		Date:           date,
		LeadSource:     body.LeadSource,
		Notes:          body.Notes,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return created(c, appt)
}

// PATCH /appointments/:id/complete
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}
	actorID, valid := actorIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing acting user")
	}

	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		AllowWithoutRule bool `json:"allow_without_rule"`
	}
	_ = c.Bind().Body(&body)

	res, err := h.svc.Complete(c.Context(), clinicID, apptID, appointment.CompleteRequest{
		AllowWithoutRule: body.AllowWithoutRule,
		ActorID:          actorID,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, fiber.Map{
		"appointment":  res.Appointment,
		"payment":      res.Payment,
		"price_source": res.PriceSource,
	})
}

// PATCH /appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}
	actorID, valid := actorIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing acting user")
	}

	apptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	if err := h.svc.Cancel(c.Context(), clinicID, apptID, actorID); err != nil {
		return mapAppointmentError(c, err)
	}
	return noContent(c)
}
