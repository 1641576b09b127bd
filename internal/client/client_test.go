package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"gameghor/internal/apperr"
	"gameghor/internal/config"
	"gameghor/internal/database"
	"gameghor/internal/models"
	"gameghor/internal/repositories"
	"gameghor/internal/server"
	"gameghor/internal/services"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubClient(rt roundTripperFunc) *Client {
	return New(Config{BaseURL: "http://store.test/", HTTPClient: &http.Client{Transport: rt}})
}

func respond(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRequestShape(t *testing.T) {
	var captured *http.Request
	var capturedBody string
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		if req.Body != nil {
			b, _ := io.ReadAll(req.Body)
			capturedBody = string(b)
		}
		return respond(http.StatusOK, `{"id":"o1","status":"completed"}`), nil
	})

	order, err := c.SetOrderStatus(context.Background(), "tok", "o1", models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, order.Status)

	assert.Equal(t, http.MethodPut, captured.Method)
	assert.Equal(t, "/orders/o1/status", captured.URL.Path)
	assert.Equal(t, "Bearer tok", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"completed"}`, capturedBody)
}

func TestAnonymousRequestsSendNoToken(t *testing.T) {
	c := stubClient(func(req *http.Request) (*http.Response, error) {
		assert.Empty(t, req.Header.Get("Authorization"))
		assert.Equal(t, "platform=Mobile", req.URL.RawQuery)
		return respond(http.StatusOK, `[]`), nil
	})

	games, err := c.ListActiveGames(context.Background(), "Mobile")
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, apperr.ErrValidation},
		{http.StatusUnauthorized, apperr.ErrAuth},
		{http.StatusForbidden, apperr.ErrAuthorization},
		{http.StatusNotFound, apperr.ErrNotFound},
		{http.StatusConflict, apperr.ErrInvalidTransition},
		{http.StatusInternalServerError, apperr.ErrTransport},
		{http.StatusBadGateway, apperr.ErrTransport},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.code), func(t *testing.T) {
			c := stubClient(func(*http.Request) (*http.Response, error) {
				return respond(tc.code, `{"detail":"server says no"}`), nil
			})
			_, err := c.ListOrders(context.Background(), "tok")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want))
			assert.Equal(t, "server says no", apperr.DetailOf(err))
		})
	}
}

func TestErrorWithoutDetail(t *testing.T) {
	c := stubClient(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, ``), nil
	})
	err := c.DeleteGame(context.Background(), "tok", "g1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, "Not Found", apperr.DetailOf(err))
}

func TestNetworkFailureIsTransport(t *testing.T) {
	cause := errors.New("connection refused")
	c := stubClient(func(*http.Request) (*http.Response, error) {
		return nil, cause
	})
	_, err := c.Login(context.Background(), "a@x.com", "pw123")
	assert.True(t, errors.Is(err, apperr.ErrTransport))
	assert.True(t, errors.Is(err, cause))
}

func TestMalformedBodyIsTransport(t *testing.T) {
	c := stubClient(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `{not json`), nil
	})
	_, err := c.ListAllGames(context.Background(), "tok")
	assert.True(t, errors.Is(err, apperr.ErrTransport))
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{BaseURL: srv.URL}).ListActiveGames(ctx, "")
	assert.True(t, errors.Is(err, context.Canceled))
}

func newLiveServer(t *testing.T) *Client {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	app := server.New(server.Deps{
		Auth: services.NewAuthService(repositories.NewGORMUserRepository(db), config.AuthConfig{
			JWTSecret:         "client-test",
			TokenTTL:          time.Hour,
			MinPasswordLength: 5,
			AdminEmails:       []string{"admin@x.com"},
		}),
		Games:  services.NewGameService(repositories.NewGORMGameRepository(db)),
		Orders: services.NewOrderService(repositories.NewGORMOrderRepository(db), nil),
		Quiet:  true,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func TestAgainstLiveServer(t *testing.T) {
	c := newLiveServer(t)
	ctx := context.Background()

	admin, err := c.Register(ctx, "Admin", "admin@x.com", "admin123")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)

	_, err = c.Register(ctx, "Alice", "a@x.com", "pw123")
	require.NoError(t, err)
	alice, err := c.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	assert.False(t, alice.IsAdmin)
	assert.Equal(t, "Alice", alice.Name)

	price := 10.0
	game, err := c.CreateGame(ctx, admin.Token, models.GameInput{Title: "Chess Pro", Price: &price, Platform: "PC"})
	require.NoError(t, err)
	assert.True(t, game.IsActive)

	_, err = c.CreateGame(ctx, alice.Token, models.GameInput{Title: "Nope", Price: &price, Platform: "PC"})
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))

	inactive := false
	game, err = c.UpdateGame(ctx, admin.Token, game.ID, models.GamePatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, game.IsActive)

	active, err := c.ListActiveGames(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := c.ListAllGames(ctx, admin.Token)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	placed, err := c.PlaceOrder(ctx, "", models.PlaceOrderInput{
		GameID: game.ID, EmailForDelivery: "buyer@x.com", NagadNumber: "017", TransactionID: "TX1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, placed.Message)
	assert.Equal(t, models.StatusPending, placed.Order.Status)

	order, err := c.SetOrderStatus(ctx, admin.Token, placed.Order.ID, models.StatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, order.Status)
	_, err = c.SetOrderStatus(ctx, admin.Token, placed.Order.ID, models.StatusCompleted)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	require.NoError(t, c.DeleteGame(ctx, admin.Token, game.ID))
	_, err = c.GetGame(ctx, admin.Token, game.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	orders, err := c.ListOrders(ctx, admin.Token)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, game.ID, orders[0].GameID)

	_, err = c.ListOrders(ctx, "garbage")
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}
