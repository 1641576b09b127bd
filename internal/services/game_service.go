package services

import (
	"log"
	"math"
	"strings"

	"gameghor/internal/apperr"
	"gameghor/internal/models"
	"gameghor/internal/policy"
	"gameghor/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// GameService is the catalog store: public browsing of active listings and
// admin-only management of every listing.
type GameService struct {
	repo     repositories.GameRepository
	validate *validator.Validate
}

// NewGameService creates a new GameService.
func NewGameService(repo repositories.GameRepository) *GameService {
	return &GameService{
		repo:     repo,
		validate: newValidator(),
	}
}

// ListActive returns active listings in catalog order. platformFilter is
// matched case-insensitively; an unknown platform matches nothing.
func (s *GameService) ListActive(platformFilter string) ([]models.Game, error) {
	var platform models.Platform
	if strings.TrimSpace(platformFilter) != "" {
		p, ok := models.ParsePlatform(platformFilter)
		if !ok {
			return []models.Game{}, nil
		}
		platform = p
	}
	return s.repo.GetActive(platform)
}

// ListAll returns every listing regardless of visibility.
func (s *GameService) ListAll(identity models.Identity) ([]models.Game, error) {
	if err := policy.Check(identity, policy.ListAllGames); err != nil {
		return nil, err
	}
	return s.repo.GetAll()
}

// Get returns a listing. Inactive listings are only visible to admins.
func (s *GameService) Get(identity models.Identity, id string) (*models.Game, error) {
	game, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !game.IsActive && !identity.IsAdmin {
		return nil, apperr.NotFound("game with ID %s not found", id)
	}
	return game, nil
}

// Create adds a listing. Listings are active unless is_active is false.
func (s *GameService) Create(identity models.Identity, in models.GameInput) (*models.Game, error) {
	if err := policy.Check(identity, policy.CreateGame); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if err := checkPrice(*in.Price); err != nil {
		return nil, err
	}
	platform, ok := models.ParsePlatform(in.Platform)
	if !ok {
		return nil, apperr.Validation("platform must be PC or Mobile")
	}

	game := &models.Game{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Platform:    platform,
		Category:    strings.TrimSpace(in.Category),
		Images:      in.Images,
		IsActive:    true,
	}
	if game.Images == nil {
		game.Images = models.ImageList{}
	}
	if in.IsActive != nil {
		game.IsActive = *in.IsActive
	}

	if err := s.repo.Create(game); err != nil {
		return nil, err
	}
	log.Printf("Created game %s (%s)", game.ID, game.Title)
	return game, nil
}

// Update applies a partial update to a listing.
func (s *GameService) Update(identity models.Identity, id string, patch models.GamePatch) (*models.Game, error) {
	if err := policy.Check(identity, policy.UpdateGame); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}

	game, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := applyPatch(game, patch); err != nil {
		return nil, err
	}
	if err := s.repo.Update(game); err != nil {
		return nil, err
	}
	return game, nil
}

// Delete removes a listing permanently. Orders referencing it are untouched.
func (s *GameService) Delete(identity models.Identity, id string) error {
	if err := policy.Check(identity, policy.DeleteGame); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	log.Printf("Deleted game %s", id)
	return nil
}

func applyPatch(game *models.Game, patch models.GamePatch) error {
	if patch.Title != nil {
		game.Title = *patch.Title
	}
	if patch.Description != nil {
		game.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		if err := checkPrice(*patch.Price); err != nil {
			return err
		}
		game.Price = *patch.Price
	}
	if patch.Platform != nil {
		platform, ok := models.ParsePlatform(*patch.Platform)
		if !ok {
			return apperr.Validation("platform must be PC or Mobile")
		}
		game.Platform = platform
	}
	if patch.Category != nil {
		game.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Images != nil {
		game.Images = *patch.Images
		if game.Images == nil {
			game.Images = models.ImageList{}
		}
	}
	if patch.IsActive != nil {
		game.IsActive = *patch.IsActive
	}
	return nil
}

func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return apperr.Validation("price must be a non-negative number")
	}
	return nil
}
