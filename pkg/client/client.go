// Package client talks to a hivectl query server.
package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/types"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is a thin wrapper over the query API.
type Client struct {
	client *resty.Client
}

// New returns a client for the server at baseURL, e.g. http://127.0.0.1:8470.
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetError(&api.ErrorResponse{})
	return &Client{client: c}
}

// Health reports whether the server is up and has a hive loaded.
func (c *Client) Health(ctx context.Context) (bool, error) {
	var out struct {
		Loaded bool `json:"loaded"`
	}
	if err := c.get(ctx, "/health", nil, &out); err != nil {
		return false, err
	}
	return out.Loaded, nil
}

// Load asks the server to parse a hive on its filesystem.
func (c *Client) Load(ctx context.Context, req api.LoadRequest) (*api.LoadResponse, error) {
	var out api.LoadResponse
	resp, err := c.client.R().SetContext(ctx).SetBody(req).SetResult(&out).Post("/hive")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Info returns the base block of the current hive.
func (c *Client) Info(ctx context.Context) (*types.HiveInfo, error) {
	var out types.HiveInfo
	if err := c.get(ctx, "/hive/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns counts for the current hive.
func (c *Client) Stats(ctx context.Context) (*types.Stats, error) {
	var out types.Stats
	if err := c.get(ctx, "/hive/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Root returns the root key.
func (c *Client) Root(ctx context.Context) (*api.Key, error) {
	return c.key(ctx, "/keys/root", nil)
}

// Key returns the key at path.
func (c *Client) Key(ctx context.Context, path string) (*api.Key, error) {
	return c.key(ctx, "/keys", map[string]string{"path": path})
}

// KeyByOffset returns the key whose record is at cell offset off.
func (c *Client) KeyByOffset(ctx context.Context, off uint32) (*api.Key, error) {
	return c.key(ctx, "/keys/offset/"+strconv.FormatUint(uint64(off), 10), nil)
}

// Search runs a text search; kind is keys, values, data or slack.
func (c *Client) Search(ctx context.Context, kind, q string, regex bool) ([]api.Hit, error) {
	return c.hits(ctx, "/search/"+kind, map[string]string{"q": q, "regex": strconv.FormatBool(regex)})
}

// ValueSize returns values at least minLen bytes long.
func (c *Client) ValueSize(ctx context.Context, minLen int) ([]api.Hit, error) {
	return c.hits(ctx, "/search/size", map[string]string{"min": strconv.Itoa(minLen)})
}

// LastWrite returns keys written within [after, before]. Zero bounds are open.
func (c *Client) LastWrite(ctx context.Context, after, before time.Time) ([]api.Hit, error) {
	q := map[string]string{}
	if !after.IsZero() {
		q["after"] = after.UTC().Format(time.RFC3339)
	}
	if !before.IsZero() {
		q["before"] = before.UTC().Format(time.RFC3339)
	}
	return c.hits(ctx, "/search/time", q)
}

// Expand returns keys matching a wildcard path.
func (c *Client) Expand(ctx context.Context, pattern string) ([]api.Hit, error) {
	return c.hits(ctx, "/search/expand", map[string]string{"pattern": pattern})
}

// Export returns the plain-text export of the current hive.
func (c *Client) Export(ctx context.Context) (string, error) {
	resp, err := c.client.R().SetContext(ctx).SetHeader("Accept", "text/plain").Get("/export")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return resp.String(), nil
}

func (c *Client) key(ctx context.Context, path string, q map[string]string) (*api.Key, error) {
	var out api.Key
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) hits(ctx context.Context, path string, q map[string]string) ([]api.Hit, error) {
	var out []api.Hit
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q map[string]string, out any) error {
	resp, err := c.client.R().SetContext(ctx).SetQueryParams(q).SetResult(out).Get(path)
	return check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	msg := resp.Status()
	if e, ok := resp.Error().(*api.ErrorResponse); ok && e.Error != "" {
		msg = e.Error
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}
