package repositories

import (
	"sync"
	"time"

	"gameghor/internal/apperr"
	"gameghor/internal/models"

	"github.com/google/uuid"
)

// MockGameRepository is an in-memory implementation of GameRepository.
type MockGameRepository struct {
	games map[string]models.Game
	order []string
	mu    sync.RWMutex
}

// NewMockGameRepository creates a new instance of MockGameRepository.
func NewMockGameRepository() *MockGameRepository {
	return &MockGameRepository{
		games: make(map[string]models.Game),
	}
}

// GetAll returns all listings in insertion order.
func (r *MockGameRepository) GetAll() ([]models.Game, error) {
	return r.collect(func(models.Game) bool { return true }), nil
}

// GetActive returns active listings, optionally restricted to one platform.
func (r *MockGameRepository) GetActive(platform models.Platform) ([]models.Game, error) {
	return r.collect(func(g models.Game) bool {
		return g.IsActive && (platform == "" || g.Platform == platform)
	}), nil
}

func (r *MockGameRepository) collect(keep func(models.Game) bool) []models.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gameList := make([]models.Game, 0, len(r.order))
	for _, id := range r.order {
		if g := r.games[id]; keep(g) {
			gameList = append(gameList, copyGame(g))
		}
	}
	return gameList
}

// GetByID returns a listing by its ID.
func (r *MockGameRepository) GetByID(id string) (*models.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, ok := r.games[id]
	if !ok {
		return nil, apperr.NotFound("game with ID %s not found", id)
	}
	game = copyGame(game)
	return &game, nil
}

// Create adds a new listing, assigning an ID when none is set.
func (r *MockGameRepository) Create(game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if game.ID == "" {
		game.ID = uuid.New().String()
	}
	now := time.Now()
	game.CreatedAt = now
	game.UpdatedAt = now
	if _, exists := r.games[game.ID]; !exists {
		r.order = append(r.order, game.ID)
	}
	r.games[game.ID] = copyGame(*game)
	return nil
}

// Update replaces an existing listing.
func (r *MockGameRepository) Update(game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.games[game.ID]
	if !ok {
		return apperr.NotFound("game with ID %s not found", game.ID)
	}
	game.CreatedAt = existing.CreatedAt
	game.UpdatedAt = time.Now()
	r.games[game.ID] = copyGame(*game)
	return nil
}

// Delete permanently removes a listing.
func (r *MockGameRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return apperr.NotFound("game with ID %s not found", id)
	}
	delete(r.games, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func copyGame(g models.Game) models.Game {
	if g.Images != nil {
		g.Images = append(models.ImageList{}, g.Images...)
	}
	return g
}
