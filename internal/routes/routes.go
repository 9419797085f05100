package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Report   *handlers.ReportHandler
	Evidence *handlers.EvidenceHandler
	Location *handlers.LocationHandler
	User     *handlers.UserHandler
}

type Options struct {
	// LimiterStorage shares rate-limit counters across instances; nil keeps
	// them in process memory.
	LimiterStorage fiber.Storage
	// UploadDir is served under /uploads when evidence is stored on local disk.
	UploadDir string
}

func Setup(app *fiber.App, cfg *config.Config, auth middleware.Authenticator, h Handlers, opts Options) {
	if opts.UploadDir != "" {
		app.Static("/uploads", opts.UploadDir, fiber.Static{ByteRange: true})
	}

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(rateLimit(120, opts.LimiterStorage))

	api.Get("/health", h.Health.Check)

	// Location lookups are public
	locations := api.Group("/locations")
	locations.Get("/geocode", h.Location.Geocode)
	locations.Get("/validate", h.Location.Validate)
	locations.Get("/nearby-police", h.Location.NearbyPolice)

	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.LoadActor(auth)}

	// Auth: 10 req/min per IP
	authGroup := api.Group("/auth", rateLimit(10, opts.LimiterStorage))
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/logout", h.Auth.Logout)
	authGroup.Post("/forgot-password", h.Auth.ForgotPassword)
	authGroup.Post("/reset-password", h.Auth.ResetPassword)
	authGroup.Get("/me", append(protected, h.Auth.Me)...)
	authGroup.Put("/password", append(protected, h.Auth.ChangePassword)...)

	reports := api.Group("/reports", protected...)
	reports.Post("/", h.Report.Create)
	reports.Get("/", h.Report.List)
	// Registered before /:id so "statistics" is not parsed as an id
	reports.Get("/statistics", middleware.RequireRole(models.RolePolice, models.RoleAdmin), h.Report.Statistics)
	reports.Get("/:id", h.Report.Get)
	reports.Put("/:id", h.Report.Update)
	reports.Delete("/:id", h.Report.Delete)

	reports.Post("/:id/evidences", h.Evidence.Upload)
	reports.Get("/:id/evidences", h.Evidence.List)
	reports.Delete("/:id/evidences/:evidenceId", h.Evidence.Remove)

	admin := api.Group("/admin", append(protected, middleware.RequireRole(models.RoleAdmin))...)
	admin.Put("/users/:id/role", h.User.SetRole)
	admin.Put("/users/:id/active", h.User.SetActive)
}

func rateLimit(max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.Envelope{Error: "Too many requests"})
		},
	})
}
