package middleware

import (
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireRole admits only actors whose role is listed. It must run after LoadActor.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		actor, err := access.GetActor(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Envelope{Error: "Unauthorized"})
		}
		if !allowed[actor.Role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.Envelope{Error: "Insufficient permissions"})
		}
		return c.Next()
	}
}
