package handlers

import (
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusUnauthorized, "Refresh token not provided")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.authService.ForgotPassword(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"message": "Password updated"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ChangePasswordRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	if err := h.authService.ChangePassword(c.UserContext(), actor.ID, &req); err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"message": "Password updated"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	resp, err := h.authService.Me(c.UserContext(), actor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}
