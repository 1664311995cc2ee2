// Package payment initializes hosted checkout transactions with Paystack.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "blogpanel/internal/errors"
)

// Initialization is the provider's answer to a successful initialize call.
type Initialization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    Initialization `json:"data"`
}

// Client calls the Paystack transaction API with a bearer secret key.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient creates a client. timeout bounds every provider call.
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// Initialize starts a transaction for amount in the currency's minor unit.
// Provider rejections wrap ErrPaymentFailed.
func (c *Client) Initialize(ctx context.Context, email string, amountMinor int64) (*Initialization, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"email":  email,
		"amount": amountMinor,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("initialize transaction: %w", err)
	}
	defer resp.Body.Close()

	var body initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: status %d, undecodable body: %v", apperrors.ErrPaymentFailed, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !body.Status {
		return nil, fmt.Errorf("%w: status %d: %s", apperrors.ErrPaymentFailed, resp.StatusCode, body.Message)
	}
	if body.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: no authorization url", apperrors.ErrPaymentFailed)
	}
	return &body.Data, nil
}
