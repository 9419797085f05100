package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/geo"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.Envelope{Error: msg})
}

// bind parses the JSON body into req and validates it. A non-empty result
// is the message for a 400 response.
func bind(c *fiber.Ctx, req interface{}) string {
	if err := c.BodyParser(req); err != nil {
		return "Invalid request body"
	}
	if err := dto.Validate(req); err != nil {
		return err.Error()
	}
	return ""
}

func idParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func actorOf(c *fiber.Ctx) (access.Actor, bool) {
	actor, err := access.GetActor(c)
	return actor, err == nil
}

// serviceError maps domain errors to responses. Anything unrecognised is
// logged and reported as a generic 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, dto.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrMissingLocation):
		return fail(c, fiber.StatusBadRequest, "Location or address is required")
	case errors.Is(err, services.ErrReportNotFound):
		return fail(c, fiber.StatusNotFound, "Report not found")
	case errors.Is(err, services.ErrEvidenceNotFound):
		return fail(c, fiber.StatusNotFound, "Evidence not found")
	case errors.Is(err, services.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, geo.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Address not found")
	case errors.Is(err, geo.ErrOutOfBounds):
		return fail(c, fiber.StatusBadRequest, "Location is outside the service area")
	case errors.Is(err, geo.ErrUnresolvableLocation):
		return fail(c, fiber.StatusUnprocessableEntity, "Location could not be resolved to an address")
	case errors.Is(err, geo.ErrUpstream):
		slog.Warn("geocoding provider failed", "path", c.Path(), "error", err)
		return fail(c, fiber.StatusBadGateway, "Geocoding service unavailable")
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fail(c, fiber.StatusUnauthorized, capitalize(err.Error()))
	case errors.Is(err, services.ErrInactiveUser):
		return fail(c, fiber.StatusForbidden, "Account is disabled")
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrNationalIDTaken):
		return fail(c, fiber.StatusConflict, capitalize(err.Error()))
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
