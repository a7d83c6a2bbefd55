// Package millionverifier implements the verification.Client interface over
// the MillionVerifier v3 REST API.
package millionverifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/docoi/Smart-S/internal/verification"
)

const defaultBaseURL = "https://api.millionverifier.com/api/v3"

// Client calls the MillionVerifier single-check and credits endpoints.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type checkResponse struct {
	Email   string `json:"email"`
	Quality string `json:"quality"`
	Result  string `json:"result"`
	Credits int    `json:"credits"`
	Error   string `json:"error"`
}

// Check runs a single-address verification.
func (c *Client) Check(ctx context.Context, email string) (*verification.Outcome, error) {
	q := url.Values{}
	q.Set("api", c.apiKey)
	q.Set("email", email)
	q.Set("timeout", "10")

	var resp checkResponse
	if err := c.get(ctx, c.baseURL+"/?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("millionverifier: %s", resp.Error)
	}
	return &verification.Outcome{
		Quality: resp.Quality,
		Result:  resp.Result,
		Credits: resp.Credits,
	}, nil
}

type creditsResponse struct {
	Credits int    `json:"credits"`
	Error   string `json:"error"`
}

// Credits reads the remaining single-check balance.
func (c *Client) Credits(ctx context.Context) (int, error) {
	q := url.Values{}
	q.Set("api", c.apiKey)

	var resp creditsResponse
	if err := c.get(ctx, c.baseURL+"/credits?"+q.Encode(), &resp); err != nil {
		return 0, err
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("millionverifier: %s", resp.Error)
	}
	return resp.Credits, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling millionverifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("millionverifier returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding millionverifier response: %w", err)
	}
	return nil
}
