package handlers

import (
	"gameghor/internal/models"
	"gameghor/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// HandleRegister creates a customer account and signs it in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	identity, err := h.authService.Register(req)
	if err != nil {
		return respondError(c, "register user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(identity)
}

// HandleLogin exchanges credentials for a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	identity, err := h.authService.Login(req)
	if err != nil {
		return respondError(c, "log in", err)
	}
	return c.JSON(identity)
}
