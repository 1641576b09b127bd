package viewmodel_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gameghor/internal/apperr"
	"gameghor/internal/client"
	"gameghor/internal/models"
)

const (
	adminToken    = "admin-token"
	customerToken = "customer-token"
)

// fakeAPI mimics the storefront service in memory, including its access
// rules and the order state machine.
type fakeAPI struct {
	mu     sync.Mutex
	games  []models.Game
	orders []models.Order
	nextID int

	listActiveCalls int
	listAllCalls    int
	listOrdersCalls int
	mutations       int

	listAllErr    error
	listOrdersErr error
	revoked       bool

	// hold blocks ListActiveGames for a platform until the channel is closed.
	hold    map[string]chan struct{}
	started chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{hold: make(map[string]chan struct{})}
}

func (f *fakeAPI) authorize(token string) error {
	switch {
	case token == "" || f.revoked:
		return apperr.Auth("invalid or expired token")
	case token != adminToken:
		return apperr.Authorization("admin privileges required")
	}
	return nil
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeAPI) seed(games ...models.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range games {
		if g.ID == "" {
			g.ID = f.id("g")
		}
		f.games = append(f.games, g)
	}
}

func (f *fakeAPI) ListActiveGames(_ context.Context, platform string) ([]models.Game, error) {
	f.mu.Lock()
	f.listActiveCalls++
	gate := f.hold[strings.ToLower(platform)]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- platform
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Game{}
	for _, g := range f.games {
		if g.IsActive && (platform == "" || strings.EqualFold(string(g.Platform), platform)) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListAllGames(_ context.Context, token string) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listAllCalls++
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	if f.listAllErr != nil {
		return nil, f.listAllErr
	}
	return append([]models.Game(nil), f.games...), nil
}

func (f *fakeAPI) CreateGame(_ context.Context, token string, in models.GameInput) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	platform, ok := models.ParsePlatform(in.Platform)
	if !ok {
		return nil, apperr.Validation("platform must be PC or Mobile")
	}
	game := models.Game{
		ID:          f.id("g"),
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Platform:    platform,
		Category:    in.Category,
		Images:      in.Images,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	f.games = append(f.games, game)
	return &game, nil
}

func (f *fakeAPI) UpdateGame(_ context.Context, token, id string, patch models.GamePatch) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	for i := range f.games {
		if f.games[i].ID != id {
			continue
		}
		if patch.IsActive != nil {
			f.games[i].IsActive = *patch.IsActive
		}
		if patch.Title != nil {
			f.games[i].Title = *patch.Title
		}
		if patch.Price != nil {
			f.games[i].Price = *patch.Price
		}
		game := f.games[i]
		return &game, nil
	}
	return nil, apperr.NotFound("game with ID %s not found", id)
}

func (f *fakeAPI) DeleteGame(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if err := f.authorize(token); err != nil {
		return err
	}
	for i := range f.games {
		if f.games[i].ID == id {
			f.games = append(f.games[:i], f.games[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("game with ID %s not found", id)
}

func (f *fakeAPI) PlaceOrder(_ context.Context, token string, in models.PlaceOrderInput) (client.PlaceOrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != "" && f.revoked {
		return client.PlaceOrderResult{}, apperr.Auth("invalid or expired token")
	}
	order := models.Order{
		ID:               f.id("o"),
		GameID:           in.GameID,
		EmailForDelivery: in.EmailForDelivery,
		NagadNumber:      in.NagadNumber,
		TransactionID:    in.TransactionID,
		Status:           models.StatusPending,
	}
	f.orders = append([]models.Order{order}, f.orders...)
	return client.PlaceOrderResult{Message: "Order placed successfully. Delivery within 2 hours.", Order: order}, nil
}

func (f *fakeAPI) ListOrders(_ context.Context, token string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listOrdersCalls++
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	if f.listOrdersErr != nil {
		return nil, f.listOrdersErr
	}
	return append([]models.Order(nil), f.orders...), nil
}

func (f *fakeAPI) SetOrderStatus(_ context.Context, token, id string, status models.OrderStatus) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	for i := range f.orders {
		if f.orders[i].ID != id {
			continue
		}
		if !f.orders[i].Status.CanTransitionTo(status) {
			return nil, apperr.InvalidTransition("order %s is already %s", id, f.orders[i].Status)
		}
		f.orders[i].Status = status
		order := f.orders[i]
		return &order, nil
	}
	return nil, apperr.NotFound("order with ID %s not found", id)
}

func (f *fakeAPI) counts() (listAll, listOrders, mutations int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listAllCalls, f.listOrdersCalls, f.mutations
}
