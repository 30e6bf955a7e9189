package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable is returned when the gateway cannot be reached or
// rejects an order-creation request.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Order is the gateway's view of a created order.
type Order struct {
	ID  string `json:"id"`
	Key string `json:"-"` // publishable key the client checkout needs
}

// Client creates orders with the payment gateway.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency string) (*Order, error)
}

// HTTPClient talks to a Razorpay-style orders API authenticated with a
// key ID / key secret pair.
type HTTPClient struct {
	baseURL   string
	keyID     string
	keySecret string
	httpc     *http.Client
	logger    *zap.Logger
}

// NewHTTPClient builds a gateway client with a bounded request timeout.
func NewHTTPClient(baseURL, keyID, keySecret string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpc:     &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// CreateOrder registers an order with the gateway and returns its ID
// together with the publishable key for the client checkout.
func (c *HTTPClient) CreateOrder(ctx context.Context, amount int64, currency string) (*Order, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("gateway order creation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Warn("gateway rejected order creation", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: gateway returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: failed to decode order response: %v", ErrUnavailable, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: gateway returned an empty order id", ErrUnavailable)
	}

	order.Key = c.keyID
	return &order, nil
}
