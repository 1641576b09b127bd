package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gameghor/internal/apperr"
	"gameghor/internal/client"
	"gameghor/internal/config"
	"gameghor/internal/database"
	"gameghor/internal/models"
	"gameghor/internal/repositories"
	"gameghor/internal/services"
	"gameghor/internal/session"
	"gameghor/internal/viewmodel"
)

const usage = `usage: cli <command> [flags]

local database:
  add-admin  -name -email -password   create an admin account
  promote    -email                   grant admin to an existing account

storefront:
  register   -name -email -password
  login      -email -password
  logout
  whoami
  games      [-platform PC|Mobile]
  buy        -game -email -nagad -txn

admin:
  admin-games
  admin-orders
  add-game   -title -price [-platform] [-category] [-description] [-images] [-inactive]
  toggle     -id
  delete     -id
  complete   -id
  cancel     -id`

var errUsage = errors.New("usage")

// app wires the client side together for one command.
type app struct {
	out        io.Writer
	sess       *session.Session
	storefront *viewmodel.Storefront
	admin      *viewmodel.Admin
}

func newApp(ctx context.Context, cfg config.ClientConfig, out io.Writer) (*app, func() error, error) {
	store, closeStore, err := session.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	api := client.New(client.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	sess := session.New(ctx, api, store)
	bus := viewmodel.NewBus()
	return &app{
		out:        out,
		sess:       sess,
		storefront: viewmodel.NewStorefront(api, bus),
		admin:      viewmodel.NewAdmin(api, sess, bus),
	}, closeStore, nil
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]

	switch name {
	case "add-admin":
		return addAdmin(cfg, rest, out)
	case "promote":
		return promote(cfg, rest, out)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	}

	cmd, ok := clientCommands[name]
	if !ok {
		return errUsage
	}
	a, closeApp, err := newApp(ctx, cfg.Client, out)
	if err != nil {
		return err
	}
	defer closeApp()
	return cmd(a, ctx, rest)
}

var clientCommands = map[string]func(a *app, ctx context.Context, args []string) error{
	"register":     (*app).register,
	"login":        (*app).login,
	"logout":       (*app).logout,
	"whoami":       (*app).whoami,
	"games":        (*app).games,
	"buy":          (*app).buy,
	"admin-games":  (*app).adminGames,
	"admin-orders": (*app).adminOrders,
	"add-game":     (*app).addGame,
	"toggle":       (*app).toggle,
	"delete":       (*app).deleteGame,
	"complete": func(a *app, ctx context.Context, args []string) error {
		return a.setStatus(ctx, "complete", models.StatusCompleted, args)
	},
	"cancel": func(a *app, ctx context.Context, args []string) error {
		return a.setStatus(ctx, "cancel", models.StatusCanceled, args)
	},
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func required(fs *flag.FlagSet, values map[string]string) error {
	var missing []string
	for flagName, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, "-"+flagName)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperr.Validation("%s: missing %s", fs.Name(), strings.Join(missing, ", "))
	}
	return nil
}

func openAuthService(cfg config.Config) (*services.AuthService, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.Auth), nil
}

func addAdmin(cfg config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("add-admin")
	name := fs.String("name", "", "Name for the new admin")
	email := fs.String("email", "", "Email for the new admin")
	password := fs.String("password", "", "Password for the new admin")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("add-admin: %v", err)
	}
	if err := required(fs, map[string]string{"name": *name, "email": *email, "password": *password}); err != nil {
		return err
	}

	auth, err := openAuthService(cfg)
	if err != nil {
		return err
	}
	user, err := auth.CreateAdmin(*name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Admin '%s' created successfully.\n", user.Email)
	return nil
}

func promote(cfg config.Config, args []string, out io.Writer) error {
	fs := newFlagSet("promote")
	email := fs.String("email", "", "Email of the account to promote")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("promote: %v", err)
	}
	if err := required(fs, map[string]string{"email": *email}); err != nil {
		return err
	}

	auth, err := openAuthService(cfg)
	if err != nil {
		return err
	}
	if err := auth.Promote(*email); err != nil {
		return err
	}
	fmt.Fprintf(out, "'%s' is now an admin. Log in again to refresh the token.\n", *email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "Your name")
	email := fs.String("email", "", "Your email")
	password := fs.String("password", "", "Your password")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("register: %v", err)
	}

	identity, err := a.sess.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s.\n", identity.Name)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "Your email")
	password := fs.String("password", "", "Your password")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("login: %v", err)
	}
	if err := required(fs, map[string]string{"email": *email, "password": *password}); err != nil {
		return err
	}

	identity, err := a.sess.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	role := "customer"
	if identity.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s).\n", identity.Name, role)
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	a.sess.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *app) whoami(_ context.Context, _ []string) error {
	identity := a.sess.Current()
	if identity.IsAnonymous() {
		fmt.Fprintln(a.out, "anonymous")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> admin=%t\n", identity.Name, identity.Email, identity.IsAdmin)
	return nil
}

func (a *app) games(ctx context.Context, args []string) error {
	fs := newFlagSet("games")
	platform := fs.String("platform", "", "Only show games for PC or Mobile")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("games: %v", err)
	}
	if err := a.storefront.SetPlatform(ctx, *platform); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPLATFORM\tCATEGORY\tPRICE")
	for _, g := range a.storefront.Listings() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", g.ID, g.Title, g.Platform, g.Category, formatPrice(g.Price))
	}
	return tw.Flush()
}

func (a *app) buy(ctx context.Context, args []string) error {
	fs := newFlagSet("buy")
	gameID := fs.String("game", "", "ID of the game to buy")
	email := fs.String("email", "", "Email the game is delivered to")
	nagad := fs.String("nagad", "", "Nagad number the payment was sent from")
	txn := fs.String("txn", "", "Nagad transaction ID")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("buy: %v", err)
	}
	if err := required(fs, map[string]string{"game": *gameID}); err != nil {
		return err
	}

	if err := a.storefront.Refresh(ctx); err != nil {
		return err
	}
	var found bool
	for _, g := range a.storefront.Listings() {
		if g.ID == *gameID {
			a.storefront.SelectForPurchase(g)
			found = true
			break
		}
	}
	if !found {
		return apperr.NotFound("game %s is not available", *gameID)
	}

	result, err := a.storefront.PlaceOrder(ctx, viewmodel.OrderForm{
		EmailForDelivery: *email,
		NagadNumber:      *nagad,
		TransactionID:    *txn,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, result.Message)
	fmt.Fprintf(a.out, "Order ID: %s\n", result.Order.ID)
	return nil
}

// enterAdmin loads the admin panel and reports collections that failed to
// load without aborting.
func (a *app) enterAdmin(ctx context.Context) error {
	result := a.admin.Enter(ctx)
	if result.Err != nil {
		return result.Err
	}
	if result.GamesErr != nil {
		fmt.Fprintf(a.out, "Could not load listings: %s\n", apperr.DetailOf(result.GamesErr))
	}
	if result.OrdersErr != nil {
		fmt.Fprintf(a.out, "Could not load orders: %s\n", apperr.DetailOf(result.OrdersErr))
	}
	return nil
}

func (a *app) adminGames(ctx context.Context, _ []string) error {
	if err := a.enterAdmin(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPLATFORM\tPRICE\tACTIVE\tIMAGES")
	for _, g := range a.admin.Games() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%d\n", g.ID, g.Title, g.Platform, formatPrice(g.Price), g.IsActive, len(g.Images))
	}
	return tw.Flush()
}

func (a *app) adminOrders(ctx context.Context, _ []string) error {
	if err := a.enterAdmin(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGAME\tEMAIL\tNAGAD\tTXN\tSTATUS\tPLACED")
	for _, o := range a.admin.OrderRows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.GameTitle, o.EmailForDelivery, o.NagadNumber,
			o.TransactionID, o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *app) addGame(ctx context.Context, args []string) error {
	draft := viewmodel.NewListingDraft()
	fs := newFlagSet("add-game")
	fs.StringVar(&draft.Title, "title", "", "Title")
	fs.StringVar(&draft.Price, "price", "", "Price")
	fs.StringVar(&draft.Platform, "platform", draft.Platform, "PC or Mobile")
	fs.StringVar(&draft.Category, "category", "", "Category")
	fs.StringVar(&draft.Description, "description", "", "Description")
	fs.StringVar(&draft.Images, "images", "", "Comma separated image URLs")
	inactive := fs.Bool("inactive", false, "Create the listing hidden")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("add-game: %v", err)
	}
	draft.IsActive = !*inactive

	a.admin.SetDraft(draft)
	game, err := a.admin.AddListing(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s (%s).\n", game.Title, game.ID)
	return nil
}

func (a *app) findGame(ctx context.Context, id string) (models.Game, error) {
	if err := a.enterAdmin(ctx); err != nil {
		return models.Game{}, err
	}
	for _, g := range a.admin.Games() {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Game{}, apperr.NotFound("game with ID %s not found", id)
}

func (a *app) toggle(ctx context.Context, args []string) error {
	fs := newFlagSet("toggle")
	id := fs.String("id", "", "Game ID")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("toggle: %v", err)
	}
	if err := required(fs, map[string]string{"id": *id}); err != nil {
		return err
	}

	game, err := a.findGame(ctx, *id)
	if err != nil {
		return err
	}
	updated, err := a.admin.ToggleActive(ctx, game)
	if err != nil {
		return err
	}
	state := "hidden"
	if updated.IsActive {
		state = "active"
	}
	fmt.Fprintf(a.out, "%s is now %s.\n", updated.Title, state)
	return nil
}

func (a *app) deleteGame(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	id := fs.String("id", "", "Game ID")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("delete: %v", err)
	}
	if err := required(fs, map[string]string{"id": *id}); err != nil {
		return err
	}

	if err := a.admin.DeleteListing(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted game %s.\n", *id)
	return nil
}

func (a *app) setStatus(ctx context.Context, name string, status models.OrderStatus, args []string) error {
	fs := newFlagSet(name)
	id := fs.String("id", "", "Order ID")
	if err := fs.Parse(args); err != nil {
		return apperr.Validation("%s: %v", name, err)
	}
	if err := required(fs, map[string]string{"id": *id}); err != nil {
		return err
	}

	order, err := a.admin.SetOrderStatus(ctx, *id, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s is now %s.\n", order.ID, order.Status)
	return nil
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
