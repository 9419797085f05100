package handlers

import (
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves admin-only account management.
type UserHandler struct {
	authService *services.AuthService
}

func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var req dto.SetRoleRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.SetRole(c.UserContext(), id, models.Role(req.Role))
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if actor, _ := actorOf(c); actor.ID == id {
		return fail(c, fiber.StatusBadRequest, "Cannot change your own account status")
	}

	var req dto.SetActiveRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.SetActive(c.UserContext(), id, *req.IsActive)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}
