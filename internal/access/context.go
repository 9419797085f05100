package access

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

var ErrNoActor = errors.New("no actor in context")

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// IsStaff reports whether the actor sees reports filed by others.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

func SetActor(c *fiber.Ctx, actor Actor) {
	c.Locals(actorKey, actor)
}

func GetActor(c *fiber.Ctx) (Actor, error) {
	actor, ok := c.Locals(actorKey).(Actor)
	if !ok {
		return Actor{}, ErrNoActor
	}
	return actor, nil
}

// Claims returns the verified JWT claims placed in locals by the JWT middleware.
func Claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
