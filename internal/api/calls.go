package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

// Login authenticates and stores the returned bearer token on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp TokenResponse
	if err := c.post(ctx, "/login", credentialsPayload{Username: username, Password: password}, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.setToken(resp.AccessToken)
	return nil
}

// Register creates an account and stores the returned bearer token.
func (c *Client) Register(ctx context.Context, username, password string) error {
	var resp TokenResponse
	if err := c.post(ctx, "/register", credentialsPayload{Username: username, Password: password}, &resp); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	c.setToken(resp.AccessToken)
	return nil
}

// Logout invalidates the token server-side and clears it locally.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.put(ctx, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.setToken("")
	return nil
}

// GetUser fetches the authenticated user's account state.
func (c *Client) GetUser(ctx context.Context) (model.User, error) {
	var resp UserResponse
	if err := c.get(ctx, "/user", nil, &resp); err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return resp.ToModel(), nil
}

// GetProducts fetches the full catalog.
func (c *Client) GetProducts(ctx context.Context) ([]ProductResponse, error) {
	var resp []ProductResponse
	if err := c.get(ctx, "/products", nil, &resp); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return resp, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id int) (ProductResponse, error) {
	var resp ProductResponse
	if err := c.get(ctx, "/product/"+strconv.Itoa(id), nil, &resp); err != nil {
		return ProductResponse{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return resp, nil
}

// GetRecords fetches a product's price records within [from, to].
func (c *Client) GetRecords(ctx context.Context, id int, from, to time.Time) ([]model.PriceRecord, error) {
	query := url.Values{}
	query.Set("from", from.UTC().Format(time.RFC3339Nano))
	query.Set("to", to.UTC().Format(time.RFC3339Nano))

	var resp RecordsResponse
	if err := c.get(ctx, "/product/"+strconv.Itoa(id)+"/records", query, &resp); err != nil {
		return nil, fmt.Errorf("get records for product %d: %w", id, err)
	}

	records := make([]model.PriceRecord, len(resp.Records))
	for i, r := range resp.Records {
		records[i] = r.ToModel()
	}
	return records, nil
}

// GetMarket fetches current stock levels for every product.
func (c *Client) GetMarket(ctx context.Context) ([]model.MarketItem, error) {
	var resp []MarketItemResponse
	if err := c.get(ctx, "/market", nil, &resp); err != nil {
		return nil, fmt.Errorf("get market: %w", err)
	}

	items := make([]model.MarketItem, len(resp))
	for i, item := range resp {
		items[i] = model.MarketItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return items, nil
}

// Buy purchases amount units of a product for the authenticated user.
func (c *Client) Buy(ctx context.Context, id, amount int) (TradeResponse, error) {
	var resp TradeResponse
	if err := c.post(ctx, "/product/"+strconv.Itoa(id)+"/buy", amountPayload{Amount: amount}, &resp); err != nil {
		return TradeResponse{}, fmt.Errorf("buy product %d: %w", id, err)
	}
	return resp, nil
}

// Sell sells amount units of a product from the authenticated user's
// holdings.
func (c *Client) Sell(ctx context.Context, id, amount int) (TradeResponse, error) {
	var resp TradeResponse
	if err := c.post(ctx, "/product/"+strconv.Itoa(id)+"/sell", amountPayload{Amount: amount}, &resp); err != nil {
		return TradeResponse{}, fmt.Errorf("sell product %d: %w", id, err)
	}
	return resp, nil
}
