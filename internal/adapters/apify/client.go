// Package apify adapts the Apify platform REST API into the pipeline's
// crawler and employee-directory ports. Each call is paid for by an account
// chosen from the pool.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/docoi/Smart-S/internal/domain"
)

const defaultBaseURL = "https://api.apify.com/v2"

// runPollInterval is how often a started actor run is polled for completion.
const runPollInterval = 5 * time.Second

// Client is a thin wrapper over the Apify v2 REST endpoints. The token is
// passed per call because every call may be billed to a different account.
type Client struct {
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

// NewClient builds a platform client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type runData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runResponse struct {
	Data runData `json:"data"`
}

// RunActorSync starts an actor run, waits for it to finish, and returns the
// items of its default dataset.
func (c *Client) RunActorSync(ctx context.Context, token, actorID string, input any, timeout time.Duration) ([]json.RawMessage, error) {
	run, err := c.startRun(ctx, token, actorID, input)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	for {
		switch run.Status {
		case "SUCCEEDED":
			return c.DatasetItems(ctx, token, run.DefaultDatasetID)
		case "FAILED", "ABORTED", "TIMED-OUT":
			return nil, fmt.Errorf("actor %s run %s ended with status %s", actorID, run.ID, run.Status)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("actor %s run %s did not finish within %s", actorID, run.ID, timeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(runPollInterval):
		}
		if run, err = c.runStatus(ctx, token, run.ID); err != nil {
			return nil, err
		}
	}
}

func (c *Client) startRun(ctx context.Context, token, actorID string, input any) (*runData, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding actor input: %w", err)
	}
	endpoint := fmt.Sprintf("%s/acts/%s/runs", c.baseURL, url.PathEscape(actorID))

	var resp runResponse
	if err := c.do(ctx, token, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, fmt.Errorf("starting actor %s: %w", actorID, err)
	}
	return &resp.Data, nil
}

func (c *Client) runStatus(ctx context.Context, token, runID string) (*runData, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s", c.baseURL, runID)

	var resp runResponse
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("polling run %s: %w", runID, err)
	}
	return &resp.Data, nil
}

// DatasetItems downloads every item of a dataset.
func (c *Client) DatasetItems(ctx context.Context, token, datasetID string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/items", c.baseURL, datasetID)

	var items []json.RawMessage
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, fmt.Errorf("fetching dataset %s: %w", datasetID, err)
	}
	return items, nil
}

type limitsResponse struct {
	Data struct {
		Current struct {
			MonthlyUsageUSD          float64 `json:"monthlyUsageUsd"`
			MonthlyActorComputeUnits int     `json:"monthlyActorComputeUnits"`
		} `json:"current"`
		Limits struct {
			MaxMonthlyUsageUSD          float64 `json:"maxMonthlyUsageUsd"`
			MaxMonthlyActorComputeUnits int     `json:"maxMonthlyActorComputeUnits"`
		} `json:"limits"`
	} `json:"data"`
}

// ReadQuota reads the account's real-time monthly platform usage.
func (c *Client) ReadQuota(ctx context.Context, account domain.Account) (*domain.QuotaBalance, error) {
	var resp limitsResponse
	if err := c.do(ctx, account.Token, http.MethodGet, c.baseURL+"/users/me/limits", nil, &resp); err != nil {
		return nil, fmt.Errorf("reading limits for %s: %w", account.Label, err)
	}
	return &domain.QuotaBalance{
		UsedUSD:           resp.Data.Current.MonthlyUsageUSD,
		LimitUSD:          resp.Data.Limits.MaxMonthlyUsageUSD,
		RemainingUSD:      resp.Data.Limits.MaxMonthlyUsageUSD - resp.Data.Current.MonthlyUsageUSD,
		ComputeUnitsUsed:  resp.Data.Current.MonthlyActorComputeUnits,
		ComputeUnitsLimit: resp.Data.Limits.MaxMonthlyActorComputeUnits,
	}, nil
}

// Probe checks the account's token by listing its actors.
func (c *Client) Probe(ctx context.Context, account domain.Account) bool {
	var resp json.RawMessage
	err := c.do(ctx, account.Token, http.MethodGet, c.baseURL+"/acts?limit=1", nil, &resp)
	return err == nil
}

func (c *Client) do(ctx context.Context, token, method, endpoint string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling apify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("apify returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding apify response: %w", err)
	}
	return nil
}
