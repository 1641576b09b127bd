package handlers

import (
	"gameghor/internal/middleware"
	"gameghor/internal/models"
	"gameghor/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderPlacedMessage is returned to the buyer after a successful order.
const OrderPlacedMessage = "Order placed successfully. Delivery within 2 hours."

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. Placing an order does not
// require a login.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", middleware.RequireAuth(), h.HandleGetOrders)
	orderRoutes.Put("/:id/status", middleware.RequireAuth(), h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists every order, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.List(middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, "retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleCreateOrder records a pending manual-payment order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.PlaceOrderInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.Place(req)
	if err != nil {
		return respondError(c, "create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": OrderPlacedMessage,
		"order":   order,
	})
}

// HandleUpdateOrderStatus completes or cancels a pending order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.SetStatus(middleware.IdentityFrom(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, "update order status", err)
	}
	return c.JSON(order)
}
