package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/psantana5/workgate/pkg/models"
	"github.com/psantana5/workgate/pkg/retry"
)

// Client is an HTTP client for the workgate API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryCfg   retry.Config
}

// New creates a new API client
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryCfg: retry.DefaultConfig(),
	}
}

// SetRetryConfig overrides the default retry behavior
func (c *Client) SetRetryConfig(cfg retry.Config) {
	c.retryCfg = cfg
}

// do executes a request with retries and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	return retry.Do(ctx, c.retryCfg, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			data, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}

		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// Check evaluates a time value against a window on the server.
// timeOfDay may be nil to use the server clock.
func (c *Client) Check(ctx context.Context, timeOfDay *int, window string) (*models.CheckResponse, error) {
	req := models.CheckRequest{Time: timeOfDay, Window: window}
	var resp models.CheckResponse
	if err := c.do(ctx, http.MethodPost, "/check", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListWindows retrieves all configured windows
func (c *Client) ListWindows(ctx context.Context) ([]*models.Window, error) {
	var resp struct {
		Windows []*models.Window `json:"windows"`
	}
	if err := c.do(ctx, http.MethodGet, "/windows", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Windows, nil
}

// SaveWindow creates or updates a window
func (c *Client) SaveWindow(ctx context.Context, w *models.Window) error {
	return c.do(ctx, http.MethodPost, "/windows", w, nil)
}

// DeleteWindow removes a window by name
func (c *Client) DeleteWindow(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/windows/"+name, nil, nil)
}

// ListDecisions retrieves recent gate decisions, newest first
func (c *Client) ListDecisions(ctx context.Context, limit int) ([]*models.Decision, error) {
	path := "/decisions"
	if limit > 0 {
		path = fmt.Sprintf("/decisions?limit=%d", limit)
	}

	var resp struct {
		Decisions []*models.Decision `json:"decisions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Decisions, nil
}
