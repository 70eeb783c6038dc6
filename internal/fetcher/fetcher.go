// file: internal/fetcher/fetcher.go
// version: 1.0.0
// guid: dabb9b3c-a10d-4509-9af9-92fc84fac189

// Package fetcher performs single GET requests with bounded retries and
// exponential backoff.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jdfalk/library-catalog/internal/metrics"
	"golang.org/x/time/rate"
)

// DefaultAttemptTimeout bounds every individual attempt.
const DefaultAttemptTimeout = 8 * time.Second

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// RequestOptions carries per-request settings such as identifying headers.
type RequestOptions struct {
	Headers map[string]string
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher issues GET requests and retries transient failures.
type Fetcher struct {
	client  Doer
	timeout time.Duration
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client.
func WithClient(client Doer) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithAttemptTimeout overrides the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLimiter makes every attempt wait on the limiter first.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) { f.sleep = sleep }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{},
		timeout: DefaultAttemptTimeout,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET of url and returns the response body. It makes up to
// policy.MaxRetries+1 attempts and returns either the body or exactly one
// error: the terminal error that stopped it, or the last retryable one.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts RequestOptions, policy RetryPolicy) ([]byte, error) {
	attempts := policy.Attempts()
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		body, err := f.attempt(ctx, url, opts)
		if err == nil {
			if attempt > 0 {
				log.Printf("[INFO] fetch: %s recovered after %d retries", url, attempt)
			}
			return body, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		if attempt == attempts-1 {
			break
		}

		delay := policy.Delay(attempt)
		metrics.IncFetchRetry(errorKind(err))
		log.Printf("[WARN] fetch: attempt %d/%d for %s failed: %v (retrying in %v)", attempt+1, attempts, url, err, delay)
		if err := f.sleep(ctx, delay); err != nil {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func (f *Fetcher) attempt(ctx context.Context, url string, opts RequestOptions) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
