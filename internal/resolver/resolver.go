// file: internal/resolver/resolver.go
// version: 1.0.0
// guid: f37805a0-c449-44ff-80b4-0413f7b4ca4f

package resolver

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jdfalk/library-catalog/internal/cache"
	"github.com/jdfalk/library-catalog/internal/isbn"
	"github.com/jdfalk/library-catalog/internal/metadata"
	"github.com/jdfalk/library-catalog/internal/metrics"
)

// Resolution outcomes, also used as metric labels.
const (
	OutcomeDebounced = "debounced"
	OutcomeInvalid   = "invalid"
	OutcomeCacheHit  = "cache_hit"
	OutcomeProvider  = "provider"
	OutcomeExhausted = "exhausted"
)

// Resolver turns raw scanned text into book metadata: debounce, normalize,
// consult the cache, then probe sources in priority order and write the
// first hit back to the cache.
type Resolver struct {
	store       cache.Store
	sources     []metadata.Source
	titleSource metadata.TitleSource
	debouncer   *Debouncer
	ttl         time.Duration
	window      time.Duration
	now         func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL sets the cache freshness window. Zero means entries never expire.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithDebounceWindow sets the debounce window. Zero disables debouncing.
func WithDebounceWindow(d time.Duration) Option {
	return func(r *Resolver) { r.window = d }
}

// WithTitleSource sets the source used by SearchByTitle.
func WithTitleSource(ts metadata.TitleSource) Option {
	return func(r *Resolver) { r.titleSource = ts }
}

// WithClock overrides the clock used for debouncing and timing.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a Resolver. Sources are probed in the order given.
func New(store cache.Store, sources []metadata.Source, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		sources: sources,
		ttl:     cache.DefaultTTL,
		window:  DefaultDebounceWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.debouncer = NewDebouncer(r.window, r.now)
	return r
}

// Resolve returns metadata for raw, or nil when the call was debounced,
// the identifier is invalid, or no source knows it.
func (r *Resolver) Resolve(ctx context.Context, raw string) *metadata.BookMetadata {
	start := r.now()
	meta, outcome := r.resolve(ctx, raw)
	metrics.IncResolution(outcome)
	metrics.ObserveResolutionDuration(outcome, r.now().Sub(start))
	return meta
}

func (r *Resolver) resolve(ctx context.Context, raw string) (*metadata.BookMetadata, string) {
	if !r.debouncer.Allow() {
		log.Printf("[DEBUG] resolver: debounced call for %q", raw)
		return nil, OutcomeDebounced
	}

	id, err := isbn.Canonicalize(raw)
	if err != nil {
		return nil, OutcomeInvalid
	}

	if m, ok := r.store.Get(ctx, id, r.ttl); ok {
		log.Printf("[DEBUG] resolver: cache hit for %s", id)
		return m, OutcomeCacheHit
	}

	for _, src := range r.sources {
		m := r.probe(ctx, src, id)
		if m == nil {
			continue
		}
		log.Printf("[INFO] resolver: %s resolved %s", src.Name(), id)
		r.store.Set(ctx, id, *m)
		return m, OutcomeProvider
	}

	log.Printf("[INFO] resolver: no source has metadata for %s", id)
	return nil, OutcomeExhausted
}

// probe calls one source, converting a panic into an absent result.
func (r *Resolver) probe(ctx context.Context, src metadata.Source, id string) (m *metadata.BookMetadata) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERROR] resolver: %s panicked on %s: %v", src.Name(), id, rec)
			m = nil
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil
	}
	return src.FetchByIdentifier(ctx, id)
}

// SearchByTitle queries the title source. Results are not cached since
// cache keys are identifiers.
func (r *Resolver) SearchByTitle(ctx context.Context, title string) (m *metadata.BookMetadata) {
	if r.titleSource == nil {
		return nil
	}
	title = strings.TrimSpace(title)
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERROR] resolver: title search for %q panicked: %v", title, rec)
			m = nil
		}
	}()
	return r.titleSource.FetchByTitle(ctx, title)
}

// Normalize exposes isbn.Normalize to callers holding a Resolver.
func (r *Resolver) Normalize(raw string) string { return isbn.Normalize(raw) }

// IsValid exposes isbn.IsValid to callers holding a Resolver.
func (r *Resolver) IsValid(raw string) bool { return isbn.IsValid(raw) }

// Store returns the cache used by the resolver, for maintenance operations.
func (r *Resolver) Store() cache.Store { return r.store }

// Sources lists the configured source names in probe order.
func (r *Resolver) Sources() []string {
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.Name())
	}
	return names
}
