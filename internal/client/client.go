// Package client talks to a running backoffice server. It backs the CLI's
// health, reset and state commands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client calls a backoffice server at BaseURL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client with a 5-second timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Health is the body of GET /health.
type Health struct {
	Status   string   `json:"status"`
	Services []string `json:"services"`
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return h, fmt.Errorf("decoding health: %w", err)
	}
	return h, nil
}

// Reset calls POST /admin/reset.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/reset", nil)
	return err
}

// ExportState writes the body of GET /admin/state to w.
func (c *Client) ExportState(ctx context.Context, w io.Writer) error {
	body, err := c.do(ctx, http.MethodGet, "/admin/state", nil)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// LoadState POSTs the contents of a JSON state file to /admin/state.
func (c *Client) LoadState(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading state file: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/admin/state", data)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
