package viewmodel

import (
	"context"

	"gameghor/internal/client"
	"gameghor/internal/models"
)

// API is the subset of the storefront service the view-models call.
// *client.Client satisfies it.
type API interface {
	ListActiveGames(ctx context.Context, platform string) ([]models.Game, error)
	ListAllGames(ctx context.Context, token string) ([]models.Game, error)
	CreateGame(ctx context.Context, token string, in models.GameInput) (*models.Game, error)
	UpdateGame(ctx context.Context, token, id string, patch models.GamePatch) (*models.Game, error)
	DeleteGame(ctx context.Context, token, id string) error

	PlaceOrder(ctx context.Context, token string, in models.PlaceOrderInput) (client.PlaceOrderResult, error)
	ListOrders(ctx context.Context, token string) ([]models.Order, error)
	SetOrderStatus(ctx context.Context, token, id string, status models.OrderStatus) (*models.Order, error)
}

// IdentitySource is read-only access to the session. *session.Session
// satisfies it.
type IdentitySource interface {
	Current() models.Identity
	Subscribe(fn func(models.Identity)) (cancel func())
	Invalidate(ctx context.Context, err error) bool
}

var _ API = (*client.Client)(nil)
