// file: internal/cache/store_test.go
// version: 1.0.0
// guid: a8ec059a-6319-4507-a74f-7919a0515391

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/library-catalog/internal/metadata"
)

const hobbit = "9780547928227"

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*KVStore, *MemoryBackend, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	backend := NewMemoryBackend()
	return NewStore(backend, WithClock(clock.now)), backend, clock
}

func sampleMetadata() metadata.BookMetadata {
	return metadata.BookMetadata{
		Title:      "The Hobbit",
		Authors:    "J.R.R. Tolkien",
		Identifier: hobbit,
		Source:     metadata.SourceOpenLibrary,
	}
}

func TestStore_RoundTripTagsCacheHit(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, hobbit, sampleMetadata())
	got, ok := store.Get(ctx, hobbit, DefaultTTL)
	require.True(t, ok)
	require.NotNil(t, got)

	want := sampleMetadata()
	want.Source = metadata.SourceCache
	assert.Equal(t, want, *got)
}

func TestStore_GetMissing(t *testing.T) {
	store, _, _ := newTestStore(t)
	got, ok := store.Get(context.Background(), hobbit, DefaultTTL)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_ExpiryBoundary(t *testing.T) {
	store, backend, clock := newTestStore(t)
	ctx := context.Background()
	ttl := 1000 * time.Millisecond

	store.Set(ctx, hobbit, sampleMetadata())

	clock.advance(1000 * time.Millisecond)
	_, ok := store.Get(ctx, hobbit, ttl)
	assert.True(t, ok, "entry exactly ttl old is still fresh")

	clock.advance(time.Millisecond)
	_, ok = store.Get(ctx, hobbit, ttl)
	assert.False(t, ok)

	_, exists, err := backend.Get(ctx, KeyPrefix+hobbit)
	require.NoError(t, err)
	assert.False(t, exists, "expired entry is deleted on read")
	assert.Equal(t, 0, store.Stats(ctx).Count)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, hobbit, sampleMetadata())
	clock.advance(10 * 365 * 24 * time.Hour)
	_, ok := store.Get(ctx, hobbit, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, store.ClearExpired(ctx, 0))
}

func TestStore_CorruptEntryIsDeletedMiss(t *testing.T) {
	store, backend, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, KeyPrefix+hobbit, []byte("{not json")))
	_, ok := store.Get(ctx, hobbit, DefaultTTL)
	assert.False(t, ok)

	_, exists, err := backend.Get(ctx, KeyPrefix+hobbit)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_EmptyObjectIsCorrupt(t *testing.T) {
	store, backend, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, KeyPrefix+hobbit, []byte("{}")))
	_, ok := store.Get(ctx, hobbit, 0)
	assert.False(t, ok)
}

func TestStore_SetRefusesNonCanonicalAndCacheTagged(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "978-0-547-92822-7", sampleMetadata())
	assert.Equal(t, 0, store.Stats(ctx).Count)

	tagged := sampleMetadata().WithSource(metadata.SourceCache)
	store.Set(ctx, hobbit, tagged)
	assert.Equal(t, 0, store.Stats(ctx).Count)
}

func TestStore_ClearExpired(t *testing.T) {
	store, backend, clock := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "0306406152", sampleMetadata())
	clock.advance(2 * time.Hour)
	store.Set(ctx, hobbit, sampleMetadata())
	require.NoError(t, backend.Set(ctx, KeyPrefix+"9780000000002", []byte("garbage")))

	removed := store.ClearExpired(ctx, time.Hour)
	assert.Equal(t, 2, removed)

	_, ok := store.Get(ctx, hobbit, time.Hour)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Stats(ctx).Count)
}

func TestStore_ClearAllKeepsForeignKeys(t *testing.T) {
	store, backend, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, hobbit, sampleMetadata())
	store.Set(ctx, "0306406152", sampleMetadata())
	require.NoError(t, backend.Set(ctx, "session:abc", []byte("keep me")))

	assert.Equal(t, 2, store.ClearAll(ctx))
	assert.Equal(t, 0, store.Stats(ctx).Count)

	v, ok, err := backend.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("keep me"), v)
}

func TestStore_Stats(t *testing.T) {
	store, backend, clock := newTestStore(t)
	ctx := context.Background()

	empty := store.Stats(ctx)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, int64(0), empty.TotalSizeBytes)
	assert.Nil(t, empty.OldestEntry)

	first := clock.t
	store.Set(ctx, "0306406152", sampleMetadata())
	clock.advance(time.Minute)
	store.Set(ctx, hobbit, sampleMetadata())
	corruptKey := KeyPrefix + "9780000000002"
	require.NoError(t, backend.Set(ctx, corruptKey, []byte("x")))
	require.NoError(t, backend.Set(ctx, "other", []byte("ignored")))

	var want int64
	require.NoError(t, backend.Scan(ctx, KeyPrefix, func(k string, v []byte) error {
		want += int64(len(k) + len(v))
		return nil
	}))

	st := store.Stats(ctx)
	assert.Equal(t, 3, st.Count)
	assert.Equal(t, want, st.TotalSizeBytes)
	require.NotNil(t, st.OldestEntry)
	assert.Equal(t, first.UnixMilli(), st.OldestEntry.UnixMilli())
}

type failingBackend struct{ *MemoryBackend }

var errBoom = errors.New("boom")

func (f *failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBoom
}

func (f *failingBackend) Set(context.Context, string, []byte) error { return errBoom }

func TestStore_BackendErrorsAreSwallowed(t *testing.T) {
	store := NewStore(&failingBackend{MemoryBackend: NewMemoryBackend()})
	ctx := context.Background()

	assert.NotPanics(t, func() { store.Set(ctx, hobbit, sampleMetadata()) })
	got, ok := store.Get(ctx, hobbit, DefaultTTL)
	assert.False(t, ok)
	assert.Nil(t, got)
}
