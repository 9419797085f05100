package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Authenticator resolves verified token claims to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, claims jwt.MapClaims) (*models.User, error)
}

// LoadActor runs after JWTProtected. The role comes from the database, not
// from the token, so demotions and deactivations apply immediately.
func LoadActor(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := access.Claims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Envelope{Error: "Unauthorized"})
		}

		user, err := auth.Authenticate(c.UserContext(), claims)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrInactiveUser):
			return c.Status(fiber.StatusForbidden).JSON(dto.Envelope{Error: "Account is disabled"})
		case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Envelope{Error: "Unauthorized"})
		default:
			slog.Error("actor lookup failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.Envelope{Error: "Internal server error"})
		}

		access.SetActor(c, access.Actor{ID: user.ID, Role: user.Role})
		return c.Next()
	}
}
