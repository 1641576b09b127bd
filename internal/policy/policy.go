// Package policy decides which identities may perform which operations.
// It is pure: no state, no side effects.
package policy

import (
	"gameghor/internal/apperr"
	"gameghor/internal/models"
)

// Operation names an action guarded by the policy.
type Operation string

const (
	BrowseCatalog Operation = "catalog.browse"
	PlaceOrder    Operation = "order.place"

	ListAllGames   Operation = "catalog.list_all"
	CreateGame     Operation = "catalog.create"
	UpdateGame     Operation = "catalog.update"
	DeleteGame     Operation = "catalog.delete"
	ListOrders     Operation = "order.list"
	SetOrderStatus Operation = "order.set_status"
)

var adminOnly = map[Operation]bool{
	ListAllGames:   true,
	CreateGame:     true,
	UpdateGame:     true,
	DeleteGame:     true,
	ListOrders:     true,
	SetOrderStatus: true,
}

// IsAdminOperation reports whether op requires an admin identity.
func IsAdminOperation(op Operation) bool {
	return adminOnly[op]
}

// Allow reports whether identity may perform op. Unknown operations are denied.
func Allow(identity models.Identity, op Operation) bool {
	switch {
	case op == BrowseCatalog || op == PlaceOrder:
		return true
	case adminOnly[op]:
		return identity.IsAdmin
	default:
		return false
	}
}

// Check is Allow expressed as an error.
func Check(identity models.Identity, op Operation) error {
	if Allow(identity, op) {
		return nil
	}
	if identity.IsAnonymous() {
		return apperr.Authorization("login as admin to access this page")
	}
	return apperr.Authorization("admin privileges required")
}
