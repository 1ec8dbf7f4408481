// Package orderapi provides a client for the remote order management
// service. All calls carry a bounded timeout and surface transport
// failures as errors; the tool layer is responsible for converting those
// into structured results.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beautypizza/bella/internal/httpkit"
)

// Client is an order service REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new order service client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("client", "orderapi"),
		httpClient: httpkit.NewClient(
			httpkit.WithTimeout(timeout),
			httpkit.WithRetry(2, time.Second),
			httpkit.WithLogger(logger),
		),
	}
}

// CreateOrder creates a new order for the client and delivery date.
func (c *Client) CreateOrder(ctx context.Context, name, document, deliveryDate string) (*Order, error) {
	body := map[string]string{
		"client_name":     name,
		"client_document": document,
		"delivery_date":   deliveryDate,
	}
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder retrieves the full order, including items, address, and total.
func (c *Client) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d/", orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AddItem adds one pizza line to the order. The item name is composed
// from flavor and size, with the crust appended unless it is the
// traditional one.
func (c *Client) AddItem(ctx context.Context, orderID int, flavor, size, crust string, quantity int, unitPrice float64) (*Order, error) {
	name := fmt.Sprintf("Pizza %s %s", flavor, size)
	if crust != "" && !strings.EqualFold(crust, "tradicional") {
		name += fmt.Sprintf(" - Borda %s", crust)
	}

	body := map[string]any{
		"items": []map[string]any{
			{
				"name":       name,
				"quantity":   quantity,
				"unit_price": unitPrice,
			},
		},
	}

	var order Order
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orders/%d/add-items/", orderID), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// RemoveItem deletes a single item from the order.
func (c *Client) RemoveItem(ctx context.Context, orderID, itemID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/orders/%d/items/%d/", orderID, itemID), nil, nil)
}

// UpdateAddress sets the delivery address on the order.
func (c *Client) UpdateAddress(ctx context.Context, orderID int, addr Address) (*Order, error) {
	body := map[string]any{"delivery_address": addr}

	var order Order
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orders/%d/update-address/", orderID), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetItems returns the order's item lines.
func (c *Client) GetItems(ctx context.Context, orderID int) ([]Item, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

// GetTotal returns the order's total as reported by the service.
func (c *Client) GetTotal(ctx context.Context, orderID int) (string, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.TotalPrice == "" {
		return "0.00", nil
	}
	return order.TotalPrice, nil
}

// GetStatus returns the order's status field.
func (c *Client) GetStatus(ctx context.Context, orderID int) (string, error) {
	order, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// FilterOrders lists orders matching the client document and, when
// non-empty, the delivery date.
func (c *Client) FilterOrders(ctx context.Context, document, deliveryDate string) ([]Order, error) {
	params := url.Values{}
	params.Set("client_document", document)
	if deliveryDate != "" {
		params.Set("delivery_date", deliveryDate)
	}

	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/filter/?"+params.Encode(), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// do performs a JSON request against the order service.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	// Drain and close to ensure connection reuse even when result is nil.
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody := httpkit.ReadErrorBody(resp.Body, 512)
		return fmt.Errorf("order API error %d on %s %s: %s", resp.StatusCode, method, path, errBody)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
