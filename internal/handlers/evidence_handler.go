package handlers

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EvidenceHandler struct {
	evidence *services.EvidenceService
	maxBytes int64
}

func NewEvidenceHandler(evidence *services.EvidenceService, maxBytes int64) *EvidenceHandler {
	return &EvidenceHandler{evidence: evidence, maxBytes: maxBytes}
}

func (h *EvidenceHandler) Upload(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	reportID, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No file provided")
	}
	if fh.Size > h.maxBytes {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("File exceeds the %d MB limit", h.maxBytes/(1024*1024)))
	}

	f, err := fh.Open()
	if err != nil {
		return serviceError(c, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	ev, err := h.evidence.Add(c.UserContext(), actor, reportID, services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusCreated, ev)
}

func (h *EvidenceHandler) List(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	reportID, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}

	list, err := h.evidence.List(c.UserContext(), actor, reportID)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, list)
}

func (h *EvidenceHandler) Remove(c *fiber.Ctx) error {
	actor, ok := actorOf(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	reportID, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid report ID")
	}
	evidenceID, ok := idParam(c, "evidenceId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid evidence ID")
	}

	if err := h.evidence.Remove(c.UserContext(), actor, reportID, evidenceID); err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"message": "Evidence deleted"})
}
