package server

import (
	"time"

	"gameghor/internal/handlers"
	"gameghor/internal/middleware"
	"gameghor/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Broker reports whether the event publisher is reachable.
type Broker interface {
	Connected() bool
}

// Deps are the services the storefront API is built from.
type Deps struct {
	Auth   *services.AuthService
	Games  *services.GameService
	Orders *services.OrderService
	Broker Broker // optional
	// Quiet disables the request logger.
	Quiet bool
}

// New builds the storefront Fiber app.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "gameghor",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
		},
	})

	app.Use(recover.New())
	if !deps.Quiet {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		broker := "disabled"
		if deps.Broker != nil {
			broker = "disconnected"
			if deps.Broker.Connected() {
				broker = "connected"
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": broker,
		})
	})

	api := app.Group("", middleware.Authenticate(deps.Auth))
	handlers.NewAuthHandler(deps.Auth).RegisterRoutes(api)
	handlers.NewGameHandler(deps.Games).RegisterRoutes(api)
	handlers.NewOrderHandler(deps.Orders).RegisterRoutes(api)

	return app
}
