package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
)

// ClinicHandler covers the small provisioning surface: tenant creation and
// the staff directory the engine snapshots beneficiary names from.
type ClinicHandler struct {
	store repository.Store
}

func NewClinicHandler(store repository.Store) *ClinicHandler {
	return &ClinicHandler{store: store}
}

// POST /clinics
func (h *ClinicHandler) Create(c fiber.Ctx) error {
	var body struct {
		Name string `json:"name" validate:"required"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&body); err != nil {
		return badRequest(c, err.Error())
	}

	clinic := &model.Clinic{Name: body.Name, IsActive: true}
	if err := h.store.Clinics().Create(c.Context(), clinic); err != nil {
		return internalError(c)
	}
	return created(c, clinic)
}

// POST /staff
func (h *ClinicHandler) CreateStaff(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	var body struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"omitempty,email"`
		Role  string `json:"role" validate:"required,oneof=professional seller reception admin"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&body); err != nil {
		return badRequest(c, err.Error())
	}

	member := &model.StaffMember{
		ClinicID: clinicID,
		Name:     body.Name,
		Email:    body.Email,
		Role:     model.StaffRole(body.Role),
		IsActive: true,
	}
	if err := h.store.Staff().Create(c.Context(), member); err != nil {
		return internalError(c)
	}
	return created(c, member)
}

// GET /staff/:id
func (h *ClinicHandler) GetStaff(c fiber.Ctx) error {
	clinicID, valid := clinicIDFromLocals(c)
	if !valid {
		return badRequest(c, "missing clinic context")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid staff id")
	}

	member, err := h.store.Staff().GetByID(c.Context(), clinicID, id)
	if err != nil {
		return notFound(c, "staff member not found")
	}
	return ok(c, member)
}
