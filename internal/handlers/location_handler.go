package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LocationHandler struct {
	locations *services.LocationService
}

func NewLocationHandler(locations *services.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

func (h *LocationHandler) Geocode(c *fiber.Ctx) error {
	address := c.Query("address")
	if address == "" {
		return fail(c, fiber.StatusBadRequest, "address is required")
	}

	loc, err := h.locations.Geocode(c.UserContext(), address)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, loc)
}

func (h *LocationHandler) Validate(c *fiber.Ctx) error {
	lat, lng, ok := coordinates(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "lat must be in [-90,90] and lng in [-180,180]")
	}

	resp, err := h.locations.ValidateLocation(c.UserContext(), lat, lng)
	if err != nil {
		return serviceError(c, err)
	}
	return success(c, fiber.StatusOK, resp)
}

// NearbyPolice never fails on provider errors; the list is advisory.
func (h *LocationHandler) NearbyPolice(c *fiber.Ctx) error {
	lat, lng, ok := coordinates(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "lat must be in [-90,90] and lng in [-180,180]")
	}

	return success(c, fiber.StatusOK, h.locations.NearbyStations(c.UserContext(), lat, lng))
}

func coordinates(c *fiber.Ctx) (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}
