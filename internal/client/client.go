package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gameghor/internal/apperr"
	"gameghor/internal/models"
)

// Config controls how the client reaches the storefront API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is a typed client for the storefront API. Methods that need a login
// take the bearer token explicitly; an empty token sends no Authorization
// header.
type Client struct {
	baseURL    string
	httpClient httpDoer
}

// PlaceOrderResult is the acknowledgement for a placed order.
type PlaceOrderResult struct {
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}

// New constructs a client with the provided configuration.
func New(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}
}

func (c *Client) Register(ctx context.Context, name, email, password string) (models.Identity, error) {
	var identity models.Identity
	err := c.do(ctx, http.MethodPost, "/auth/register", "", models.RegisterInput{
		Name: name, Email: email, Password: password,
	}, &identity)
	return identity, err
}

func (c *Client) Login(ctx context.Context, email, password string) (models.Identity, error) {
	var identity models.Identity
	err := c.do(ctx, http.MethodPost, "/auth/login", "", models.LoginInput{
		Email: email, Password: password,
	}, &identity)
	return identity, err
}

// ListActiveGames returns the storefront catalog. An empty platform lists
// every platform.
func (c *Client) ListActiveGames(ctx context.Context, platform string) ([]models.Game, error) {
	path := "/games"
	if platform != "" {
		path += "?" + url.Values{"platform": {platform}}.Encode()
	}
	games := []models.Game{}
	err := c.do(ctx, http.MethodGet, path, "", nil, &games)
	return games, err
}

func (c *Client) ListAllGames(ctx context.Context, token string) ([]models.Game, error) {
	games := []models.Game{}
	err := c.do(ctx, http.MethodGet, "/games/all", token, nil, &games)
	return games, err
}

func (c *Client) GetGame(ctx context.Context, token, id string) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodGet, "/games/"+url.PathEscape(id), token, nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) CreateGame(ctx context.Context, token string, in models.GameInput) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodPost, "/games", token, in, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) UpdateGame(ctx context.Context, token, id string, patch models.GamePatch) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodPut, "/games/"+url.PathEscape(id), token, patch, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) DeleteGame(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/games/"+url.PathEscape(id), token, nil, nil)
}

// PlaceOrder submits an order. token may be empty for anonymous buyers.
func (c *Client) PlaceOrder(ctx context.Context, token string, in models.PlaceOrderInput) (PlaceOrderResult, error) {
	var result PlaceOrderResult
	err := c.do(ctx, http.MethodPost, "/orders", token, in, &result)
	return result, err
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	orders := []models.Order{}
	err := c.do(ctx, http.MethodGet, "/orders", token, nil, &orders)
	return orders, err
}

func (c *Client) SetOrderStatus(ctx context.Context, token, id string, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", token, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	req, err := c.buildRequest(ctx, method, path, token, in)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Transport(err, "could not reach the store")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Transport(err, "unexpected response from %s %s", method, path)
	}
	return nil
}

func (c *Client) buildRequest(ctx context.Context, method, path, token string, in interface{}) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
