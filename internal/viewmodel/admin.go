package viewmodel

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"

	"gameghor/internal/apperr"
	"gameghor/internal/models"
	"gameghor/internal/policy"
)

const (
	slotGames  = "admin.games"
	slotOrders = "admin.orders"

	// RemovedListingTitle stands in for the title of a deleted listing.
	RemovedListingTitle = "(listing removed)"
)

// ListingDraft is the new-listing form. Price and Images hold the raw text
// the admin typed.
type ListingDraft struct {
	Title       string
	Description string
	Price       string
	Platform    string
	Category    string
	Images      string
	IsActive    bool
}

// NewListingDraft returns an empty form.
func NewListingDraft() ListingDraft {
	return ListingDraft{Platform: string(models.PlatformPC), IsActive: true}
}

// Input converts the draft into a create request.
func (d ListingDraft) Input() (models.GameInput, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return models.GameInput{}, apperr.Validation("title is required")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return models.GameInput{}, apperr.Validation("price must be a non-negative number")
	}
	active := d.IsActive
	return models.GameInput{
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Price:       &price,
		Platform:    strings.TrimSpace(d.Platform),
		Category:    strings.TrimSpace(d.Category),
		Images:      models.ParseImages(d.Images),
		IsActive:    &active,
	}, nil
}

// AdminLoadResult reports the outcome of entering the admin panel. Err is
// set when access was refused; the collection errors are independent.
type AdminLoadResult struct {
	Err       error
	GamesErr  error
	OrdersErr error
}

// OK reports whether everything loaded.
func (r AdminLoadResult) OK() bool {
	return r.Err == nil && r.GamesErr == nil && r.OrdersErr == nil
}

// OrderRow is an order joined with the cached listing it references.
type OrderRow struct {
	models.Order
	GameTitle      string
	ListingRemoved bool
}

// Admin manages the full catalog and the order ledger. Every mutation is
// checked against the access policy first, and on completion invalidates
// the affected collection so it is reloaded from the service.
type Admin struct {
	api  API
	sess IdentitySource
	bus  *Bus
	seq  *Sequencer

	mu          sync.RWMutex
	games       []models.Game
	gamesLoaded bool
	orders      []models.Order
	last        AdminLoadResult
	draft       ListingDraft
}

func NewAdmin(api API, sess IdentitySource, bus *Bus) *Admin {
	a := &Admin{
		api:   api,
		sess:  sess,
		bus:   bus,
		seq:   NewSequencer(),
		draft: NewListingDraft(),
	}
	bus.Subscribe(TopicGames, func(ctx context.Context) {
		if err := a.reload(ctx, a.refreshGames); err != nil {
			log.Printf("Admin listings reload failed: %v", err)
		}
	})
	bus.Subscribe(TopicOrders, func(ctx context.Context) {
		if err := a.reload(ctx, a.refreshOrders); err != nil {
			log.Printf("Admin orders reload failed: %v", err)
		}
	})
	sess.Subscribe(func(identity models.Identity) {
		if !identity.IsAdmin {
			a.reset()
		}
	})
	return a
}

// Enter checks access and loads listings and orders concurrently. A failure
// of one collection does not keep the other from loading.
func (a *Admin) Enter(ctx context.Context) AdminLoadResult {
	if err := policy.Check(a.sess.Current(), policy.ListAllGames); err != nil {
		return AdminLoadResult{Err: err}
	}

	var result AdminLoadResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.GamesErr = a.refreshGames(ctx)
	}()
	go func() {
		defer wg.Done()
		result.OrdersErr = a.refreshOrders(ctx)
	}()
	wg.Wait()
	return result
}

// LastLoad returns the errors of the most recent load of each collection.
func (a *Admin) LastLoad() AdminLoadResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

func (a *Admin) Games() []models.Game {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Game, len(a.games))
	copy(out, a.games)
	return out
}

func (a *Admin) Orders() []models.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Order, len(a.orders))
	copy(out, a.orders)
	return out
}

// OrderRows joins the cached orders with the cached listings. Orders whose
// listing no longer exists keep their game id and show RemovedListingTitle.
func (a *Admin) OrderRows() []OrderRow {
	a.mu.RLock()
	defer a.mu.RUnlock()

	titles := make(map[string]string, len(a.games))
	for _, g := range a.games {
		titles[g.ID] = g.Title
	}
	rows := make([]OrderRow, 0, len(a.orders))
	for _, o := range a.orders {
		row := OrderRow{Order: o, GameTitle: o.GameID}
		if title, ok := titles[o.GameID]; ok {
			row.GameTitle = title
		} else if a.gamesLoaded {
			row.GameTitle = RemovedListingTitle
			row.ListingRemoved = true
		}
		rows = append(rows, row)
	}
	return rows
}

func (a *Admin) Draft() ListingDraft {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.draft
}

func (a *Admin) SetDraft(draft ListingDraft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draft = draft
}

// AddListing creates a listing from the draft. The draft is reset only when
// the listing was created.
func (a *Admin) AddListing(ctx context.Context) (*models.Game, error) {
	in, err := a.Draft().Input()
	if err != nil {
		return nil, err
	}

	var game *models.Game
	err = a.mutate(ctx, policy.CreateGame, TopicGames, func(token string) error {
		var callErr error
		game, callErr = a.api.CreateGame(ctx, token, in)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	a.SetDraft(NewListingDraft())
	return game, nil
}

// ToggleActive flips the visibility of game.
func (a *Admin) ToggleActive(ctx context.Context, game models.Game) (*models.Game, error) {
	active := !game.IsActive
	return a.EditListing(ctx, game.ID, models.GamePatch{IsActive: &active})
}

func (a *Admin) EditListing(ctx context.Context, id string, patch models.GamePatch) (*models.Game, error) {
	var game *models.Game
	err := a.mutate(ctx, policy.UpdateGame, TopicGames, func(token string) error {
		var callErr error
		game, callErr = a.api.UpdateGame(ctx, token, id, patch)
		return callErr
	})
	return game, err
}

func (a *Admin) DeleteListing(ctx context.Context, id string) error {
	return a.mutate(ctx, policy.DeleteGame, TopicGames, func(token string) error {
		return a.api.DeleteGame(ctx, token, id)
	})
}

func (a *Admin) SetOrderStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	err := a.mutate(ctx, policy.SetOrderStatus, TopicOrders, func(token string) error {
		var callErr error
		order, callErr = a.api.SetOrderStatus(ctx, token, id, next)
		return callErr
	})
	return order, err
}

func (a *Admin) mutate(ctx context.Context, op policy.Operation, topic Topic, call func(token string) error) error {
	identity := a.sess.Current()
	if err := policy.Check(identity, op); err != nil {
		return err
	}

	err := call(identity.Token)
	switch {
	case err == nil, errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalidTransition):
		a.bus.Publish(ctx, topic)
	case errors.Is(err, apperr.ErrAuth):
		a.sess.Invalidate(ctx, err)
	}
	return err
}

// reload refreshes a collection unless the session no longer has admin
// rights.
func (a *Admin) reload(ctx context.Context, refresh func(context.Context) error) error {
	if !a.sess.Current().IsAdmin {
		return nil
	}
	return refresh(ctx)
}

func (a *Admin) refreshGames(ctx context.Context) error {
	id := a.seq.Next(slotGames)
	games, err := a.api.ListAllGames(ctx, a.sess.Current().Token)
	if err != nil {
		a.sess.Invalidate(ctx, err)
	}
	a.seq.Apply(slotGames, id, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.last.GamesErr = err
		if err == nil {
			a.games = games
			a.gamesLoaded = true
		}
	})
	return err
}

func (a *Admin) refreshOrders(ctx context.Context) error {
	id := a.seq.Next(slotOrders)
	orders, err := a.api.ListOrders(ctx, a.sess.Current().Token)
	if err != nil {
		a.sess.Invalidate(ctx, err)
	}
	a.seq.Apply(slotOrders, id, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.last.OrdersErr = err
		if err == nil {
			a.orders = orders
		}
	})
	return err
}

// reset drops everything cached for the previous admin. In-flight loads are
// superseded so their responses are discarded.
func (a *Admin) reset() {
	a.seq.Next(slotGames)
	a.seq.Next(slotOrders)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.games = nil
	a.gamesLoaded = false
	a.orders = nil
	a.last = AdminLoadResult{}
	a.draft = NewListingDraft()
}
