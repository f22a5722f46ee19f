// Package upstream fetches raw JSON records from the course-data
// providers.  The catalog only sees the Fetcher interface, so HTTP, the
// Redis cache and the fixture stub are interchangeable.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/iliyamo/schedule-builder/internal/provider"
)

// ErrNotFound is returned when the provider has no such resource.
var ErrNotFound = errors.New("upstream: not found")

// Fetcher reads records from one provider.  path is relative to the
// provider root ("/course"); query may be nil.
type Fetcher interface {
	FetchOne(ctx context.Context, path string, query url.Values) (provider.Record, error)
	FetchMany(ctx context.Context, path string, query url.Values) ([]provider.Record, error)
}

// StatusError reports a non-2xx, non-404 response.
type StatusError struct {
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: %s returned HTTP %d", e.Path, e.Status)
}

// RequestKey renders path and query as one canonical string.  url.Values
// encodes keys in sorted order so equal requests share a key.
func RequestKey(path string, query url.Values) string {
	path = "/" + strings.TrimLeft(path, "/")
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
