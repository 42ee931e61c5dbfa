package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultFreshFor is how long a fetched feed snapshot is served without
	// re-contacting the upstream host.
	DefaultFreshFor = 5 * time.Minute

	defaultFetchTimeout = 15 * time.Second
)

// ErrUpstreamUnavailable is returned when the feed host cannot be reached or
// answers with a non-2xx status. It is distinct from an empty day, which is a
// successful response.
var ErrUpstreamUnavailable = errors.New("upstream feed unavailable")

// snapshot is an immutable fetched document plus its fetch time. The cache
// replaces the whole pointer on refresh; the body is never mutated in place,
// so a concurrent duplicate fetch is harmless.
type snapshot struct {
	body      []byte
	fetchedAt time.Time
}

// FeedCacheOptions tunes a FeedCache. Zero values fall back to defaults;
// Now exists so tests can drive the freshness window with a fake clock.
type FeedCacheOptions struct {
	Client   *http.Client
	FreshFor time.Duration
	Now      func() time.Time
}

// FeedCache serves one feed URL, re-fetching at most once per freshness
// window. On fetch failure the error is surfaced and the cached snapshot is
// left untouched; a snapshot past its window is never served in place of a
// failed fetch.
type FeedCache struct {
	url      string
	client   *http.Client
	freshFor time.Duration
	now      func() time.Time

	mu   sync.Mutex
	snap *snapshot
}

// NewFeedCache creates a FeedCache for the given feed URL.
func NewFeedCache(url string, opt FeedCacheOptions) *FeedCache {
	c := &FeedCache{
		url:      url,
		client:   opt.Client,
		freshFor: opt.FreshFor,
		now:      opt.Now,
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if c.freshFor <= 0 {
		c.freshFor = DefaultFreshFor
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get returns the raw feed document, fetching it if the cached snapshot is
// missing or older than the freshness window. fromCache reports whether the
// body was served without a network round trip.
func (c *FeedCache) Get(ctx context.Context) (body []byte, fromCache bool, err error) {
	now := c.now()

	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()

	if snap != nil && now.Sub(snap.fetchedAt) < c.freshFor {
		return snap.body, true, nil
	}

	fetched, err := c.fetch(ctx)
	if err != nil {
		// Cache deliberately left unchanged; the stale snapshot is not served.
		return nil, false, err
	}

	c.mu.Lock()
	c.snap = &snapshot{body: fetched, fetchedAt: c.now()}
	c.mu.Unlock()

	return fetched, false, nil
}

func (c *FeedCache) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return data, nil
}
