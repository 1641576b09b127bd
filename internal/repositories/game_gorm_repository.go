package repositories

import (
	"errors"
	"fmt"

	"gameghor/internal/apperr"
	"gameghor/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMGameRepository is a GORM implementation of GameRepository.
type GORMGameRepository struct {
	db *gorm.DB
}

// NewGORMGameRepository creates a new instance of GORMGameRepository.
func NewGORMGameRepository(db *gorm.DB) *GORMGameRepository {
	return &GORMGameRepository{
		db: db,
	}
}

// GetAll retrieves every listing in insertion order.
func (r *GORMGameRepository) GetAll() ([]models.Game, error) {
	var games []models.Game
	if err := r.db.Order("created_at ASC").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to get all games: %w", err)
	}
	return games, nil
}

// GetActive retrieves active listings, optionally for a single platform.
func (r *GORMGameRepository) GetActive(platform models.Platform) ([]models.Game, error) {
	query := r.db.Where("is_active = ?", true)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	var games []models.Game
	if err := query.Order("created_at ASC").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to get active games: %w", err)
	}
	return games, nil
}

// GetByID retrieves a single listing by its ID.
func (r *GORMGameRepository) GetByID(id string) (*models.Game, error) {
	var game models.Game
	if err := r.db.First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("game with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get game by ID %s: %w", id, err)
	}
	return &game, nil
}

// Create inserts a new listing.
func (r *GORMGameRepository) Create(game *models.Game) error {
	if game.ID == "" {
		game.ID = uuid.New().String()
	}
	if err := r.db.Create(game).Error; err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// Update writes every column of an existing listing, zero values included.
func (r *GORMGameRepository) Update(game *models.Game) error {
	res := r.db.Model(&models.Game{}).Where("id = ?", game.ID).Select("*").Omit("id", "created_at").Updates(game)
	if res.Error != nil {
		return fmt.Errorf("failed to update game: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("game with ID %s not found", game.ID)
	}
	return nil
}

// Delete removes a listing permanently. Orders referencing it are kept.
func (r *GORMGameRepository) Delete(id string) error {
	res := r.db.Delete(&models.Game{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete game: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("game with ID %s not found", id)
	}
	return nil
}
