package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler takes an optional Redis client; nil reports the cache as disabled.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}
	if dbStatus != "ok" {
		status = "degraded"
	}

	cacheStatus := "disabled"
	if h.redis != nil {
		cacheStatus = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			cacheStatus = "unhealthy: " + err.Error()
		}
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.Envelope{
		Success: status == "ok",
		Data: dto.HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			DB:        dbStatus,
			Cache:     cacheStatus,
		},
	})
}
