package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"gameghor/internal/apperr"
	"gameghor/internal/client"
	"gameghor/internal/models"

	"github.com/go-playground/validator/v10"
)

const slotListings = "storefront.listings"

// OrderForm is what the buyer fills in for the staged listing.
type OrderForm struct {
	EmailForDelivery string `validate:"required,email"`
	NagadNumber      string `validate:"required"`
	TransactionID    string `validate:"required"`
}

// Storefront browses the active catalog and places orders.
type Storefront struct {
	api      API
	bus      *Bus
	seq      *Sequencer
	validate *validator.Validate

	mu       sync.RWMutex
	platform string
	listings []models.Game
	loaded   bool
	staged   *models.Game
}

func NewStorefront(api API, bus *Bus) *Storefront {
	s := &Storefront{
		api:      api,
		bus:      bus,
		seq:      NewSequencer(),
		validate: validator.New(),
	}
	bus.Subscribe(TopicGames, func(ctx context.Context) {
		s.mu.RLock()
		loaded := s.loaded
		s.mu.RUnlock()
		if !loaded {
			return
		}
		if err := s.Refresh(ctx); err != nil {
			log.Printf("Storefront refresh after invalidation failed: %v", err)
		}
	})
	return s
}

// Platform returns the active platform filter, empty for all platforms.
func (s *Storefront) Platform() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.platform
}

// SetPlatform changes the filter and reloads the catalog for it.
func (s *Storefront) SetPlatform(ctx context.Context, platform string) error {
	platform = strings.TrimSpace(platform)
	s.mu.Lock()
	changed := !strings.EqualFold(platform, s.platform) || !s.loaded
	s.platform = platform
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the active catalog for the current filter. The cache
// keeps its previous contents when the fetch fails.
func (s *Storefront) Refresh(ctx context.Context) error {
	platform := s.Platform()
	id := s.seq.Next(slotListings)

	games, err := s.api.ListActiveGames(ctx, platform)
	if err != nil {
		return err
	}
	s.seq.Apply(slotListings, id, func() {
		s.mu.Lock()
		s.listings = games
		s.loaded = true
		s.mu.Unlock()
	})
	return nil
}

// Listings returns the cached catalog in service order.
func (s *Storefront) Listings() []models.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Game, len(s.listings))
	copy(out, s.listings)
	return out
}

// SelectForPurchase stages game for the order form, replacing any
// previously staged listing.
func (s *Storefront) SelectForPurchase(game models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := game
	s.staged = &staged
}

// Staged returns the listing staged for purchase.
func (s *Storefront) Staged() (models.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.staged == nil {
		return models.Game{}, false
	}
	return *s.staged, true
}

func (s *Storefront) ClearStaged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

// PlaceOrder submits form for the staged listing. The staged listing is
// released once the order is accepted.
func (s *Storefront) PlaceOrder(ctx context.Context, form OrderForm) (client.PlaceOrderResult, error) {
	game, ok := s.Staged()
	if !ok {
		return client.PlaceOrderResult{}, apperr.Validation("select a game before placing an order")
	}

	form = OrderForm{
		EmailForDelivery: strings.TrimSpace(form.EmailForDelivery),
		NagadNumber:      strings.TrimSpace(form.NagadNumber),
		TransactionID:    strings.TrimSpace(form.TransactionID),
	}
	if err := s.validateForm(form); err != nil {
		return client.PlaceOrderResult{}, err
	}

	// Orders are not tied to an account, so they are sent without a token.
	result, err := s.api.PlaceOrder(ctx, "", models.PlaceOrderInput{
		GameID:           game.ID,
		EmailForDelivery: form.EmailForDelivery,
		NagadNumber:      form.NagadNumber,
		TransactionID:    form.TransactionID,
	})
	if err != nil {
		return client.PlaceOrderResult{}, err
	}

	s.mu.Lock()
	if s.staged != nil && s.staged.ID == game.ID {
		s.staged = nil
	}
	s.mu.Unlock()

	s.bus.Publish(ctx, TopicOrders)
	return result, nil
}

var formFieldNames = map[string]string{
	"EmailForDelivery": "email",
	"NagadNumber":      "Nagad number",
	"TransactionID":    "transaction ID",
}

func (s *Storefront) validateForm(form OrderForm) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		name := formFieldNames[e.Field()]
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", name))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", name))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", name))
		}
	}
	return apperr.Validation("%s", strings.Join(messages, "; "))
}
