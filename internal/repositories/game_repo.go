package repositories

import (
	"gameghor/internal/models"
)

// GameRepository defines the interface for catalog data access. Listings
// come back in insertion order.
type GameRepository interface {
	GetAll() ([]models.Game, error)
	// GetActive returns active listings; an empty platform matches all.
	GetActive(platform models.Platform) ([]models.Game, error)
	GetByID(id string) (*models.Game, error)
	Create(game *models.Game) error
	Update(game *models.Game) error
	Delete(id string) error
}
