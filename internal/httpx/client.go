// Package httpx provides the retrying HTTP download client used to fetch
// remote media before it is cached locally.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/memohai/cqcode/internal/media"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryMax     = 3
	DefaultRetryBackoff = 500 * time.Millisecond
	DefaultUserAgent    = "cqcode-prefetch/1.0"
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected response status")

// Config holds client-wide defaults. Per-call media.FetchOptions override
// any non-zero field.
type Config struct {
	Timeout      time.Duration
	RetryMax     int
	RetryBackoff time.Duration
	MaxBytes     int64
	UserAgent    string
	Header       http.Header
}

// Client downloads resources over HTTP with a linear-backoff retry loop.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewClient returns a client. A nil httpClient uses a fresh http.Client.
func NewClient(log *slog.Logger, httpClient *http.Client, cfg Config) *Client {
	if log == nil {
		log = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:   httpClient,
		cfg:    normalizeConfig(cfg),
		logger: log.With(slog.String("service", "httpx")),
		sleep:  sleepContext,
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = DefaultRetryMax
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	cfg.MaxBytes = media.ClampMaxBytes(cfg.MaxBytes)
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg
}

// merge overlays the non-zero fields of opts onto the client defaults.
func (c *Client) merge(opts media.FetchOptions) Config {
	merged := c.cfg
	if opts.Timeout > 0 {
		merged.Timeout = opts.Timeout
	}
	if opts.RetryMax > 0 {
		merged.RetryMax = opts.RetryMax
	}
	if opts.RetryBackoff > 0 {
		merged.RetryBackoff = opts.RetryBackoff
	}
	if opts.MaxBytes > 0 {
		merged.MaxBytes = media.ClampMaxBytes(opts.MaxBytes)
	}
	header := http.Header{}
	for k, v := range c.cfg.Header {
		header[k] = append([]string(nil), v...)
	}
	for k, v := range opts.Header {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	merged.Header = header
	return merged
}

// Get downloads url and returns the response body. Network errors, 5xx and
// 429 responses are retried; other statuses fail immediately.
func (c *Client) Get(ctx context.Context, url string, opts media.FetchOptions) ([]byte, error) {
	cfg := c.merge(opts)
	var lastErr error
	for i := 0; i < cfg.RetryMax; i++ {
		data, retryable, err := c.getOnce(ctx, url, cfg)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
		if i == cfg.RetryMax-1 {
			break
		}
		c.logger.Warn("download retry",
			slog.String("url", url),
			slog.Int("attempt", i+1),
			slog.Any("error", err))
		if err := c.sleep(ctx, time.Duration(i+1)*cfg.RetryBackoff); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("download failed after %d attempts: %w", cfg.RetryMax, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string, cfg Config) ([]byte, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	for k, v := range cfg.Header {
		req.Header[k] = v
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		retryable := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	if resp.ContentLength > cfg.MaxBytes {
		return nil, false, fmt.Errorf("%w: max %d bytes", media.ErrAssetTooLarge, cfg.MaxBytes)
	}
	data, err := media.ReadAllWithLimit(resp.Body, cfg.MaxBytes)
	if err != nil {
		if errors.Is(err, media.ErrAssetTooLarge) {
			return nil, false, err
		}
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return data, false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
