package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/memohai/cqcode/internal/cqcode"
)

// Prefetcher turns remote image URLs into image codes that point at a local
// cached copy. Downloads are bounded by a shared Limiter. Concurrent misses
// for the same URL are not collapsed; each one downloads on its own.
type Prefetcher struct {
	cache   ContentCache
	fetcher Fetcher
	limiter *Limiter
	logger  *slog.Logger
}

// NewPrefetcher creates a prefetcher. A nil limiter is replaced by one of
// DefaultConcurrency slots owned by this prefetcher.
func NewPrefetcher(log *slog.Logger, cache ContentCache, fetcher Fetcher, limiter *Limiter) *Prefetcher {
	if log == nil {
		log = slog.Default()
	}
	if limiter == nil {
		limiter = NewLimiter(DefaultConcurrency)
	}
	return &Prefetcher{
		cache:   cache,
		fetcher: fetcher,
		limiter: limiter,
		logger:  log.With(slog.String("service", "prefetch")),
	}
}

// Prefetch returns an image code for rawURL. On a cache hit or a successful
// download the code references the local file; on any failure it falls back
// to referencing rawURL itself. It never fails.
func (p *Prefetcher) Prefetch(ctx context.Context, rawURL, variant string, opts FetchOptions) string {
	localPath, err := p.localCopy(ctx, rawURL, opts)
	if err != nil {
		p.logger.Warn("prefetch image failed",
			slog.String("url", rawURL),
			slog.Any("error", err))
		return cqcode.Image(rawURL, variant)
	}
	return cqcode.Image(FileURL(localPath), variant)
}

func (p *Prefetcher) localCopy(ctx context.Context, rawURL string, opts FetchOptions) (string, error) {
	if p.cache == nil {
		return "", ErrCacheUnavailable
	}
	if p.fetcher == nil {
		return "", fmt.Errorf("fetcher is not configured")
	}
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("url is required")
	}
	cached, ok, err := p.cache.Lookup(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("cache lookup: %w", err)
	}
	if ok {
		return cached, nil
	}

	if err := p.limiter.Acquire(ctx); err != nil {
		return "", fmt.Errorf("wait for download slot: %w", err)
	}
	defer p.limiter.Release()

	data, err := p.fetcher.Get(ctx, rawURL, opts)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}
	stored, err := p.cache.Store(ctx, rawURL, data)
	if err != nil {
		return "", fmt.Errorf("cache store: %w", err)
	}
	return stored, nil
}

// FileURL expresses a filesystem path as a file:// URL.
func FileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}
