package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/repository"
)

const LocalsClinicID = "clinic_id"

// ClinicHeader reads the clinic ID from the X-Clinic-ID header on
// clinic-scoped routes, validates the clinic exists and is active, and stores
// the id in Locals for downstream handlers. Tenancy is always explicit: no
// handler infers a clinic from ambient state.
func ClinicHeader(store repository.Store) fiber.Handler {
	return func(c fiber.Ctx) error {
		idStr := c.Get("X-Clinic-ID")
		if idStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "X-Clinic-ID header is required")
		}

		clinicID, err := uuid.Parse(idStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid X-Clinic-ID value")
		}

		exists, err := store.Clinics().ExistsActive(c.Context(), clinicID)
		if err != nil {
			return err
		}
		if !exists {
			return fiber.ErrNotFound
		}

		c.Locals(LocalsClinicID, clinicID.String())

		return c.Next()
	}
}
