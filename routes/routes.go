package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"verifyproxy/config"
	controller "verifyproxy/controllers"
	"verifyproxy/middleware"
	"verifyproxy/utils"
)

// MaxBodySize caps request bodies; larger requests get 413.
const MaxBodySize = 1 << 20

// NewApp builds the fiber app with the body cap and JSON error rendering.
func NewApp(cfg *config.Config) *fiber.App {
	return fiber.New(fiber.Config{
		BodyLimit:             MaxBodySize,
		StrictRouting:         true,
		CaseSensitive:         true,
		ProxyHeader:           cfg.ProxyHeader,
		EnableIPValidation:    true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.ErrorResponse(c, fe.Code, fe.Message)
	}

	utils.LogError("http_error", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal Server Error")
}

// SetupRoutes registers POST /verify and a catch-all 404.
func SetupRoutes(app *fiber.App, cfg *config.Config, limiter *middleware.RateLimiter, vc *controller.VerificationController) {
	signer := utils.NewSignatureVerifier(cfg.Secret)

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Post("/verify",
		middleware.IPAllowlist(cfg.AllowedIPs),
		middleware.RateLimit(limiter),
		middleware.Authenticate(signer, limiter),
		vc.Verify,
	)

	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not Found")
	})
}
