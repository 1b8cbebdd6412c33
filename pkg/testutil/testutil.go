// Package testutil drives the backoffice API over HTTP in tests: a JSON
// client, the /admin/* helpers and response assertions.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Client sends requests to a test server and fails t on transport errors.
type Client struct {
	t    *testing.T
	base string
	http *http.Client
}

// NewClient creates a client for srv.
func NewClient(t *testing.T, srv *httptest.Server) *Client {
	return &Client{t: t, base: srv.URL, http: srv.Client()}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	t          *testing.T
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) {
	r.t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		r.t.Fatalf("decode response: %v\nbody: %s", err, r.Body)
	}
}

// JSONMap decodes the body as an object.
func (r *Response) JSONMap() map[string]any {
	r.t.Helper()
	var m map[string]any
	r.JSON(&m)
	return m
}

// Items decodes a {"items": [...]} body. A missing or null array fails.
func (r *Response) Items() []map[string]any {
	r.t.Helper()
	var list struct {
		Items []map[string]any `json:"items"`
	}
	r.JSON(&list)
	if list.Items == nil {
		r.t.Fatalf("no items array in body: %s", r.Body)
	}
	return list.Items
}

// AssertStatus reports a mismatching status code.
func (r *Response) AssertStatus(want int) *Response {
	r.t.Helper()
	if r.StatusCode != want {
		r.t.Errorf("status = %d, want %d\nbody: %s", r.StatusCode, want, r.Body)
	}
	return r
}

// AssertBodyContains reports a body without substr.
func (r *Response) AssertBodyContains(substr string) *Response {
	r.t.Helper()
	if !strings.Contains(string(r.Body), substr) {
		r.t.Errorf("body %s does not contain %q", r.Body, substr)
	}
	return r
}

// AssertError checks for status and an {"error": msg} body.
func (r *Response) AssertError(status int, msg string) *Response {
	r.t.Helper()
	r.AssertStatus(status)
	if got, _ := r.JSONMap()["error"].(string); got != msg {
		r.t.Errorf("error = %q, want %q", got, msg)
	}
	return r
}

// Get sends GET path.
func (c *Client) Get(path string) *Response {
	c.t.Helper()
	return c.send(http.MethodGet, path, "", nil, nil)
}

// Post sends body as JSON. A nil body sends no body.
func (c *Client) Post(path string, body any) *Response {
	c.t.Helper()
	return c.PostWithHeaders(path, body, nil)
}

// PostWithHeaders is Post with extra request headers.
func (c *Client) PostWithHeaders(path string, body any, headers map[string]string) *Response {
	c.t.Helper()
	ct, data := c.encode(body)
	return c.send(http.MethodPost, path, ct, data, headers)
}

// PostRaw sends body verbatim with the given content type.
func (c *Client) PostRaw(path, contentType string, body []byte, headers map[string]string) *Response {
	c.t.Helper()
	return c.send(http.MethodPost, path, contentType, body, headers)
}

// Patch sends body as JSON.
func (c *Client) Patch(path string, body any) *Response {
	c.t.Helper()
	ct, data := c.encode(body)
	return c.send(http.MethodPatch, path, ct, data, nil)
}

// Delete sends DELETE path.
func (c *Client) Delete(path string) *Response {
	c.t.Helper()
	return c.send(http.MethodDelete, path, "", nil, nil)
}

func (c *Client) encode(body any) (string, []byte) {
	c.t.Helper()
	if body == nil {
		return "", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		c.t.Fatalf("encode request: %v", err)
	}
	return "application/json", data
}

func (c *Client) send(method, path, contentType string, body []byte, headers map[string]string) *Response {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatalf("build %s %s: %v", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read %s %s: %v", method, path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data, t: c.t}
}

// AdminClient wraps Client with the /admin/* endpoints.
type AdminClient struct {
	*Client
}

// NewAdminClient creates an admin client sharing c's connection.
func NewAdminClient(c *Client) *AdminClient {
	return &AdminClient{c}
}

// Reset calls POST /admin/reset.
func (a *AdminClient) Reset() *Response {
	a.t.Helper()
	return a.Post("/admin/reset", nil)
}

// GetState calls GET /admin/state.
func (a *AdminClient) GetState() *Response {
	a.t.Helper()
	return a.Get("/admin/state")
}

// LoadState posts state to /admin/state.
func (a *AdminClient) LoadState(state any) *Response {
	a.t.Helper()
	return a.Post("/admin/state", state)
}

// GetRequests calls GET /admin/requests.
func (a *AdminClient) GetRequests() *Response {
	a.t.Helper()
	return a.Get("/admin/requests")
}

// AdvanceTime moves the simulated clock by duration, e.g. "24h".
func (a *AdminClient) AdvanceTime(duration string) *Response {
	a.t.Helper()
	return a.Post("/admin/time/advance", map[string]string{"duration": duration})
}
