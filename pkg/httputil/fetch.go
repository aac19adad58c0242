package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/cladeview/pkg/cache"
	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/observability"
)

const (
	// DefaultMaxBytes bounds downloaded bodies.
	DefaultMaxBytes = 64 << 20

	// DefaultTTL is how long fetched bodies stay cached.
	DefaultTTL = time.Hour

	kindFetch = "fetch"
)

// Fetcher downloads files over HTTP with caching and retries.
type Fetcher struct {
	Client *http.Client
	Cache  cache.Cache
	TTL    time.Duration

	// Attempts and Delay configure [Retry].
	Attempts int
	Delay    time.Duration

	// MaxBytes rejects larger bodies with INVALID_INPUT.
	MaxBytes int64
}

// NewFetcher returns a fetcher backed by c. A nil cache disables caching.
func NewFetcher(c cache.Cache) *Fetcher {
	if c == nil {
		c = cache.NewNullCache("no cache configured")
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Cache:    c,
		TTL:      DefaultTTL,
		Attempts: 3,
		Delay:    time.Second,
		MaxBytes: DefaultMaxBytes,
	}
}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the body at url and whether it came from the cache.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, bool, error) {
	key := cache.FetchKey(url)
	if data, hit, err := f.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, kindFetch)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, kindFetch)

	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if err := f.Cache.Set(ctx, key, body, f.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, kindFetch, len(body))
	}
	return body, false, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, cverrors.Wrap(cverrors.ErrCodeInvalidInput, err, "bad url %q", url)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("get %s: %w", url, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, cverrors.New(cverrors.ErrCodeNotFound, "get %s: %s", url, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("get %s: %s", url, resp.Status))
	case resp.StatusCode >= 400:
		return nil, cverrors.New(cverrors.ErrCodeInvalidInput, "get %s: %s", url, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("read %s: %w", url, err))
	}
	if int64(len(body)) > limit {
		return nil, cverrors.New(cverrors.ErrCodeInvalidInput, "%s is larger than %d bytes", url, limit)
	}
	return body, nil
}
