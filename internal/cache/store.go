// file: internal/cache/store.go
// version: 1.0.0
// guid: e82fc60d-ddb1-4501-95d1-0f722854edce

package cache

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jdfalk/library-catalog/internal/isbn"
	"github.com/jdfalk/library-catalog/internal/metadata"
	"github.com/jdfalk/library-catalog/internal/metrics"
)

// KeyPrefix namespaces cache entries inside a shared backend.
const KeyPrefix = "isbn-cache:"

// DefaultTTL is how long an entry stays fresh unless configured otherwise.
const DefaultTTL = 7 * 24 * time.Hour

// Stats summarizes the cache contents.
type Stats struct {
	Count          int        `json:"count"`
	TotalSizeBytes int64      `json:"totalSizeBytes"`
	OldestEntry    *time.Time `json:"oldestEntry"`
}

// Store is the persistent cache of resolved metadata keyed by canonical
// identifier. A ttl of zero means entries never expire. No method returns
// a storage error: failures are logged and reported as a miss or a no-op.
type Store interface {
	Get(ctx context.Context, key string, ttl time.Duration) (*metadata.BookMetadata, bool)
	Set(ctx context.Context, key string, m metadata.BookMetadata)
	ClearExpired(ctx context.Context, ttl time.Duration) int
	ClearAll(ctx context.Context) int
	Stats(ctx context.Context) Stats
	Close() error
}

// KVStore implements Store over any Backend.
type KVStore struct {
	backend Backend
	now     func() time.Time
}

// StoreOption configures a KVStore.
type StoreOption func(*KVStore)

// WithClock overrides the time source used for timestamps and expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *KVStore) { s.now = now }
}

// NewStore wraps backend in a KVStore.
func NewStore(backend Backend, opts ...StoreOption) *KVStore {
	s := &KVStore{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func storageKey(identifier string) string { return KeyPrefix + identifier }

// Get returns the cached metadata for key tagged as a cache hit. Corrupt
// and expired entries are deleted and reported as a miss.
func (s *KVStore) Get(ctx context.Context, key string, ttl time.Duration) (*metadata.BookMetadata, bool) {
	raw, ok, err := s.backend.Get(ctx, storageKey(key))
	if err != nil {
		log.Printf("[WARN] cache: read %s failed: %v", key, err)
		metrics.IncCacheOperation("get", "error")
		return nil, false
	}
	if !ok {
		metrics.IncCacheOperation("get", "miss")
		return nil, false
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		log.Printf("[WARN] cache: dropping corrupt entry %s: %v", key, err)
		s.delete(ctx, storageKey(key))
		metrics.IncCacheOperation("get", "corrupt")
		return nil, false
	}

	if s.expired(entry, ttl) {
		log.Printf("[DEBUG] cache: entry %s expired", key)
		s.delete(ctx, storageKey(key))
		metrics.IncCacheOperation("get", "expired")
		return nil, false
	}

	metrics.IncCacheOperation("get", "hit")
	m := entry.Metadata.WithSource(metadata.SourceCache)
	return &m, true
}

// Set writes m under key. Non-canonical keys and metadata that came from
// the cache itself are refused.
func (s *KVStore) Set(ctx context.Context, key string, m metadata.BookMetadata) {
	if !isbn.IsCanonical(key) {
		log.Printf("[WARN] cache: refusing non-canonical key %q", key)
		metrics.IncCacheOperation("set", "rejected")
		return
	}
	if m.Source == metadata.SourceCache {
		log.Printf("[WARN] cache: refusing to store cache-tagged metadata for %s", key)
		metrics.IncCacheOperation("set", "rejected")
		return
	}

	raw, err := encodeEntry(Entry{Identifier: key, Metadata: m, StoredAt: s.now().UnixMilli()})
	if err != nil {
		log.Printf("[WARN] cache: encode %s failed: %v", key, err)
		metrics.IncCacheOperation("set", "error")
		return
	}
	if err := s.backend.Set(ctx, storageKey(key), raw); err != nil {
		log.Printf("[WARN] cache: write %s failed: %v", key, err)
		metrics.IncCacheOperation("set", "error")
		return
	}
	metrics.IncCacheOperation("set", "ok")
}

// ClearExpired deletes corrupt entries, and entries older than ttl when
// ttl is positive. It returns the number of entries deleted.
func (s *KVStore) ClearExpired(ctx context.Context, ttl time.Duration) int {
	var doomed []string
	err := s.backend.Scan(ctx, KeyPrefix, func(key string, value []byte) error {
		entry, err := decodeEntry(value)
		if err != nil || s.expired(entry, ttl) {
			doomed = append(doomed, key)
		}
		return nil
	})
	if err != nil {
		log.Printf("[WARN] cache: scan for expired entries failed: %v", err)
	}
	removed := s.deleteAll(ctx, doomed)
	log.Printf("[INFO] cache: cleared %d expired or corrupt entries", removed)
	return removed
}

// ClearAll deletes every namespaced entry and returns how many were removed.
func (s *KVStore) ClearAll(ctx context.Context) int {
	var doomed []string
	err := s.backend.Scan(ctx, KeyPrefix, func(key string, _ []byte) error {
		doomed = append(doomed, key)
		return nil
	})
	if err != nil {
		log.Printf("[WARN] cache: scan for clear-all failed: %v", err)
	}
	removed := s.deleteAll(ctx, doomed)
	log.Printf("[INFO] cache: cleared %d entries", removed)
	return removed
}

// Stats scans the namespace. Corrupt entries count toward Count and
// TotalSizeBytes but not OldestEntry.
func (s *KVStore) Stats(ctx context.Context) Stats {
	var (
		st     Stats
		oldest int64
	)
	err := s.backend.Scan(ctx, KeyPrefix, func(key string, value []byte) error {
		st.Count++
		st.TotalSizeBytes += int64(len(key) + len(value))
		entry, err := decodeEntry(value)
		if err != nil {
			return nil
		}
		if oldest == 0 || entry.StoredAt < oldest {
			oldest = entry.StoredAt
		}
		return nil
	})
	if err != nil {
		log.Printf("[WARN] cache: stats scan failed: %v", err)
	}
	if oldest > 0 {
		t := time.UnixMilli(oldest).UTC()
		st.OldestEntry = &t
	}
	metrics.SetCacheEntries(st.Count)
	metrics.SetCacheBytes(st.TotalSizeBytes)
	return st
}

// Close closes the backend.
func (s *KVStore) Close() error {
	return s.backend.Close()
}

func (s *KVStore) expired(e Entry, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return s.now().UnixMilli()-e.StoredAt > ttl.Milliseconds()
}

func (s *KVStore) delete(ctx context.Context, storageKey string) bool {
	if err := s.backend.Delete(ctx, storageKey); err != nil {
		log.Printf("[WARN] cache: delete %s failed: %v", strings.TrimPrefix(storageKey, KeyPrefix), err)
		return false
	}
	return true
}

func (s *KVStore) deleteAll(ctx context.Context, keys []string) int {
	removed := 0
	for _, k := range keys {
		if s.delete(ctx, k) {
			removed++
		}
	}
	return removed
}
