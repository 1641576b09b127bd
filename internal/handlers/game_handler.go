package handlers

import (
	"log"

	"gameghor/internal/middleware"
	"gameghor/internal/models"
	"gameghor/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GameHandler handles HTTP requests for the catalog.
type GameHandler struct {
	service *services.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(service *services.GameService) *GameHandler {
	return &GameHandler{
		service: service,
	}
}

// RegisterRoutes registers the catalog routes. Authenticate must already be
// installed on router.
func (h *GameHandler) RegisterRoutes(router fiber.Router) {
	gameRoutes := router.Group("/games")
	gameRoutes.Get("/", h.HandleListActive)
	gameRoutes.Get("/all", middleware.RequireAuth(), h.HandleListAll)
	gameRoutes.Get("/:id", h.HandleGet)
	gameRoutes.Post("/", middleware.RequireAuth(), h.HandleCreate)
	gameRoutes.Put("/:id", middleware.RequireAuth(), h.HandleUpdate)
	gameRoutes.Delete("/:id", middleware.RequireAuth(), h.HandleDelete)
}

// HandleListActive lists the storefront catalog, optionally filtered by
// ?platform=.
func (h *GameHandler) HandleListActive(c *fiber.Ctx) error {
	games, err := h.service.ListActive(c.Query("platform"))
	if err != nil {
		return respondError(c, "retrieve games", err)
	}
	return c.JSON(games)
}

// HandleListAll lists every listing including inactive ones.
func (h *GameHandler) HandleListAll(c *fiber.Ctx) error {
	games, err := h.service.ListAll(middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, "retrieve games", err)
	}
	return c.JSON(games)
}

func (h *GameHandler) HandleGet(c *fiber.Ctx) error {
	game, err := h.service.Get(middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "retrieve game", err)
	}
	return c.JSON(game)
}

func (h *GameHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.GameInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	game, err := h.service.Create(middleware.IdentityFrom(c), req)
	if err != nil {
		return respondError(c, "create game", err)
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

func (h *GameHandler) HandleUpdate(c *fiber.Ctx) error {
	var req models.GamePatch
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	game, err := h.service.Update(middleware.IdentityFrom(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, "update game", err)
	}
	return c.JSON(game)
}

func (h *GameHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(middleware.IdentityFrom(c), id); err != nil {
		return respondError(c, "delete game", err)
	}
	log.Printf("Game %s deleted", id)
	return c.JSON(fiber.Map{
		"message": "Game deleted successfully",
	})
}
