// file: cmd/app.go
// version: 1.0.0
// guid: 5554b096-c67e-40bf-8bd8-73cc06d0ddce

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdfalk/library-catalog/internal/cache"
	"github.com/jdfalk/library-catalog/internal/config"
	"github.com/jdfalk/library-catalog/internal/fetcher"
	"github.com/jdfalk/library-catalog/internal/metadata"
	"github.com/jdfalk/library-catalog/internal/resolver"
)

// app bundles the cache and resolver shared by every command.
type app struct {
	store    *cache.KVStore
	resolver *resolver.Resolver
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Printf("[WARN] Failed to close cache: %v", err)
	}
}

// openBackend creates the configured cache backend, making sure the parent
// directory of a file-based cache exists.
func openBackend(ctx context.Context, cfg config.Config) (cache.Backend, error) {
	if cfg.CacheBackend == "pebble" || cfg.CacheBackend == "sqlite" {
		if dir := filepath.Dir(cfg.CachePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
	}
	return cache.NewBackend(ctx, cache.BackendOptions{
		Kind:         cfg.CacheBackend,
		Path:         cfg.CachePath,
		PostgresDSN:  cfg.PostgresDSN,
		EnableSQLite: cfg.EnableSQLite,
	})
}

// openStore opens the configured cache without building any providers.
func openStore(ctx context.Context, cfg config.Config) (*cache.KVStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[DEBUG] Using %s cache at %s", cfg.CacheBackend, cfg.CachePath)
	return cache.NewStore(backend), nil
}

// buildApp wires the cache, both provider adapters and the resolver from
// cfg. debounce overrides cfg.DebounceWindow when non-negative.
func buildApp(ctx context.Context, cfg config.Config, debounce time.Duration) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := fetcher.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.BaseDelay,
		MaxDelay:   cfg.MaxDelay,
	}

	google := metadata.NewGoogleBooksClientWithBaseURL(cfg.GoogleBooksBaseURL, cfg.GoogleBooksAPIKey)
	google.SetFetcher(fetcher.New(fetcher.WithAttemptTimeout(cfg.FetchTimeout)))
	google.SetRetryPolicy(policy)

	olOpts := []fetcher.Option{fetcher.WithAttemptTimeout(cfg.FetchTimeout)}
	if cfg.OpenLibraryRequestsPerSecond > 0 {
		olOpts = append(olOpts, fetcher.WithLimiter(rate.NewLimiter(rate.Limit(cfg.OpenLibraryRequestsPerSecond), 1)))
	}
	openLib := metadata.NewOpenLibraryClientWithBaseURL(cfg.OpenLibraryBaseURL, cfg.OpenLibraryUserAgent)
	openLib.SetFetcher(fetcher.New(olOpts...))
	openLib.SetRetryPolicy(policy)

	window := cfg.DebounceWindow
	if debounce >= 0 {
		window = debounce
	}

	res := resolver.New(store, []metadata.Source{google, openLib},
		resolver.WithTTL(cfg.CacheTTL),
		resolver.WithDebounceWindow(window),
		resolver.WithTitleSource(google),
	)
	return &app{store: store, resolver: res}, nil
}
