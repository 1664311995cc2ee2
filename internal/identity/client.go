// Package identity is a small client for the hosted account service that
// issues and validates user sessions and performs OAuth token exchange.
// It speaks the Appwrite-compatible REST dialect.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerProject = "X-Appwrite-Project"
	headerKey     = "X-Appwrite-Key"
	headerSession = "X-Appwrite-Session"
)

// ErrNoRedirect is returned when the backend does not answer an OAuth
// token request with a redirect to the provider.
var ErrNoRedirect = errors.New("identity backend returned no redirect")

// APIError is an error response from the identity backend.
type APIError struct {
	StatusCode int    `json:"code"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity backend: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

// IsUnauthorized reports whether err means the session secret is invalid or expired.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Account is the user record the backend resolves from a session.
type Account struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is a backend issued session. Secret is what goes into the cookie.
type Session struct {
	ID     string    `json:"$id"`
	UserID string    `json:"userId"`
	Secret string    `json:"secret"`
	Expire time.Time `json:"expire"`
}

// Client talks to the identity backend.
type Client struct {
	endpoint  string
	projectID string
	apiKey    string
	http      *http.Client
}

// NewClient creates a client. timeout bounds every backend call.
func NewClient(endpoint, projectID, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
		apiKey:    apiKey,
		http: &http.Client{
			Timeout: timeout,
			// The OAuth token endpoint answers with a redirect we want to read, not follow.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// GetAccount resolves the account that owns the given session secret.
func (c *Client) GetAccount(ctx context.Context, secret string) (*Account, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/account", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerSession, secret)

	var account Account
	if err := c.do(req, http.StatusOK, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateOAuth2Token returns the provider authorization URL the browser
// should be sent to. The provider redirects back to success or failure.
func (c *Client) CreateOAuth2Token(ctx context.Context, provider, success, failure string) (string, error) {
	q := url.Values{}
	q.Set("success", success)
	q.Set("failure", failure)
	q.Set("project", c.projectID)
	path := "/account/tokens/oauth2/" + url.PathEscape(provider) + "?" + q.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request oauth2 token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrNoRedirect
	}
	return location, nil
}

// CreateSession exchanges the OAuth callback pair for a session.
func (c *Client) CreateSession(ctx context.Context, userID, secret string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"userId": userID, "secret": secret})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/account/sessions/token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(headerKey, c.apiKey)
	}

	var session Session
	if err := c.do(req, http.StatusCreated, &session); err != nil {
		return nil, err
	}
	if session.Secret == "" {
		return nil, errors.New("identity backend returned a session without secret")
	}
	return &session, nil
}

// DeleteSession ends the session identified by secret.
func (c *Client) DeleteSession(ctx context.Context, secret string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/account/sessions/current", nil)
	if err != nil {
		return err
	}
	req.Header.Set(headerSession, secret)
	return c.do(req, http.StatusNoContent, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerProject, c.projectID)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, want int, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	// The body's code field may disagree with the transport status.
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
