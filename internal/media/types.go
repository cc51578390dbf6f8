package media

import (
	"context"
	"net/http"
	"time"
)

// ContentCache maps a remote URL to a local copy of its content.
type ContentCache interface {
	// Lookup returns the local path cached for key. ok is false on a miss.
	Lookup(ctx context.Context, key string) (path string, ok bool, err error)
	// Store writes data under key and returns the local path holding it.
	Store(ctx context.Context, key string, data []byte) (path string, err error)
}

// FetchOptions tunes a single download. Zero fields keep the fetcher's defaults.
type FetchOptions struct {
	Header       http.Header
	Timeout      time.Duration
	MaxBytes     int64
	RetryMax     int
	RetryBackoff time.Duration
}

// Fetcher downloads a remote resource as raw bytes. Implementations own
// their retry policy.
type Fetcher interface {
	Get(ctx context.Context, url string, opts FetchOptions) ([]byte, error)
}
