package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/cqcode/internal/config"
	"github.com/memohai/cqcode/internal/httpx"
	"github.com/memohai/cqcode/internal/logger"
	"github.com/memohai/cqcode/internal/media"
	"github.com/memohai/cqcode/internal/media/providers/diskcache"
)

func newPrefetchCommand(root *rootOptions) *cobra.Command {
	var (
		variant string
		headers map[string]string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "prefetch <url>...",
		Short: "Download images into the local cache and print image codes pointing at them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefetcher, err := buildPrefetcher(root.cfg)
			if err != nil {
				return err
			}
			opts := media.FetchOptions{Timeout: timeout, Header: http.Header{}}
			for k, v := range headers {
				opts.Header.Set(k, v)
			}
			codes := prefetchAll(cmd.Context(), prefetcher, args, variant, opts)
			for _, code := range codes {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), code); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "image variant, e.g. flash")
	cmd.Flags().StringToStringVar(&headers, "header", nil, "extra request header, e.g. --header Referer=https://example.com")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout, overrides config")
	return cmd
}

// prefetchAll runs every URL through the shared prefetcher concurrently and
// returns the codes in input order.
func prefetchAll(ctx context.Context, p *media.Prefetcher, urls []string, variant string, opts media.FetchOptions) []string {
	if ctx == nil {
		ctx = context.Background()
	}
	codes := make([]string, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			codes[i] = p.Prefetch(ctx, u, variant, opts)
		}(i, u)
	}
	wg.Wait()
	return codes
}

// buildPrefetcher assembles the prefetch graph from cfg.
func buildPrefetcher(cfg config.Config) (*media.Prefetcher, error) {
	var prefetcher *media.Prefetcher
	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideLimiter,
			provideContentCache,
			provideFetcher,
			media.NewPrefetcher,
		),
		fx.Populate(&prefetcher),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build prefetcher: %w", err)
	}
	return prefetcher, nil
}

func provideLogger() *slog.Logger {
	return logger.L
}

func provideLimiter(cfg config.Config) *media.Limiter {
	return media.NewLimiter(cfg.Media.MaxConcurrency)
}

func provideContentCache(log *slog.Logger, cfg config.Config) (media.ContentCache, error) {
	cache, err := diskcache.New(log, cfg.Media.CacheDir, cfg.Media.IndexSize)
	if err != nil {
		return nil, fmt.Errorf("open media cache: %w", err)
	}
	return cache, nil
}

func provideFetcher(log *slog.Logger, cfg config.Config) media.Fetcher {
	header := http.Header{}
	for k, v := range cfg.HTTP.Headers {
		header.Set(k, v)
	}
	return httpx.NewClient(log, nil, httpx.Config{
		Timeout:      cfg.HTTP.Timeout(),
		RetryMax:     cfg.HTTP.RetryMax,
		RetryBackoff: cfg.HTTP.RetryBackoff(),
		MaxBytes:     cfg.Media.MaxBytes,
		UserAgent:    cfg.HTTP.UserAgent,
		Header:       header,
	})
}
