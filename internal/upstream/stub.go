package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/iliyamo/schedule-builder/internal/provider"
)

// Stub is an in-memory Fetcher keyed by RequestKey.  Unknown single
// resources are ErrNotFound; unknown lists are empty.  It backs the
// tests and the offline mode of the server.
type Stub struct {
	mu    sync.RWMutex
	one   map[string]provider.Record
	many  map[string][]provider.Record
	fails map[string]error
	calls int
}

// NewStub returns an empty stub.
func NewStub() *Stub {
	return &Stub{
		one:   map[string]provider.Record{},
		many:  map[string][]provider.Record{},
		fails: map[string]error{},
	}
}

// stubFixture is the on-disk form read by LoadStub:
//
//	{"one": {"/course?name=CMSC131": {...}}, "many": {"/courses?limit=30&offset=0": [...]}}
type stubFixture struct {
	One  map[string]provider.Record   `json:"one"`
	Many map[string][]provider.Record `json:"many"`
}

// LoadStub reads a fixture file.
func LoadStub(path string) (*Stub, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("upstream: read fixture: %w", err)
	}
	var fx stubFixture
	if err := json.Unmarshal(bs, &fx); err != nil {
		return nil, fmt.Errorf("upstream: parse fixture %s: %w", path, err)
	}
	s := NewStub()
	for k, v := range fx.One {
		s.one[k] = v
	}
	for k, v := range fx.Many {
		s.many[k] = v
	}
	return s, nil
}

// SetOne registers the record returned for a single-resource request.
func (s *Stub) SetOne(path string, query url.Values, r provider.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.one[RequestKey(path, query)] = r
}

// SetMany registers the records returned for a list request.
func (s *Stub) SetMany(path string, query url.Values, rs []provider.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.many[RequestKey(path, query)] = rs
}

// Fail makes every request for path+query return err.
func (s *Stub) Fail(path string, query url.Values, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[RequestKey(path, query)] = err
}

// Calls is the number of requests served so far.
func (s *Stub) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// FetchOne implements Fetcher.
func (s *Stub) FetchOne(ctx context.Context, path string, query url.Values) (provider.Record, error) {
	key, err := s.begin(ctx, path, query)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.one[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return r, nil
}

// FetchMany implements Fetcher.
func (s *Stub) FetchMany(ctx context.Context, path string, query url.Values) ([]provider.Record, error) {
	key, err := s.begin(ctx, path, query)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.many[key], nil
}

func (s *Stub) begin(ctx context.Context, path string, query url.Values) (string, error) {
	key := RequestKey(path, query)
	s.mu.Lock()
	s.calls++
	err := s.fails[key]
	s.mu.Unlock()
	if err != nil {
		return key, err
	}
	return key, ctx.Err()
}
