package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/schedule-builder/internal/provider"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client is a JSON-over-HTTP Fetcher rooted at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a Client whose requests time out after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchOne implements Fetcher.  The body must be a JSON object.
func (c *Client) FetchOne(ctx context.Context, path string, query url.Values) (provider.Record, error) {
	var out provider.Record
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

// FetchMany implements Fetcher.  The body must be a JSON array of objects.
func (c *Client) FetchMany(ctx context.Context, path string, query url.Values) ([]provider.Record, error) {
	var out []provider.Record
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	key := RequestKey(path, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+key, nil)
	if err != nil {
		return fmt.Errorf("upstream: build request %s: %w", key, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: GET %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Path: key, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(dst); err != nil {
		return fmt.Errorf("upstream: decode %s: %w", key, err)
	}
	return nil
}
