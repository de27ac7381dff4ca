package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const LocalsActorID = "actor_id"

// Actor reads the acting user from the X-Acting-User header. Authentication
// lives in the gateway in front of this service; here the actor id is only
// threaded through for audit fields, and always as an explicit parameter.
func Actor() fiber.Handler {
	return func(c fiber.Ctx) error {
		idStr := c.Get("X-Acting-User")
		if idStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "X-Acting-User header is required")
		}

		actorID, err := uuid.Parse(idStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid X-Acting-User value")
		}

		c.Locals(LocalsActorID, actorID.String())

		return c.Next()
	}
}
