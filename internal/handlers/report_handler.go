package handlers

import (
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateReportRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.reports.Create(c.UserContext(), actor, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusCreated, resp)
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var filter dto.ReportFilter
	if err := c.QueryParser(&filter); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := dto.Validate(&filter); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.reports.List(c.UserContext(), actor, &filter)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	resp, err := h.reports.Get(c.UserContext(), actor, id)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	var req dto.UpdateReportRequest
	if msg := bind(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.reports.Update(c.UserContext(), actor, id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	if err := h.reports.Delete(c.UserContext(), actor, id); err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"message": "Report deleted"})
}

func (h *ReportHandler) Statistics(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	resp, err := h.reports.Statistics(c.UserContext(), actor)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}
