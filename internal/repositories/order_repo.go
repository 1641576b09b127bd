package repositories

import (
	"gameghor/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never deleted.
type OrderRepository interface {
	// GetAll returns every order, most recent first.
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// UpdateStatus moves an order from one status to another. It fails with
	// an invalid transition error when the stored status is no longer from.
	UpdateStatus(id string, from, to models.OrderStatus) error
}
