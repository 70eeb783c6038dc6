// file: internal/fetcher/fetcher_test.go
// version: 1.0.0
// guid: 2083025c-1ae9-44a9-9059-cb7bebf0077e

package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep captures backoff delays without waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

// statusSequence serves the given statuses in order, then repeats the last.
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
		if statuses[n] == http.StatusOK {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 3 * time.Second}
	assert.Equal(t, 500*time.Millisecond, p.Delay(0))
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 3*time.Second, p.Delay(3))
	assert.Equal(t, 3*time.Second, p.Delay(10))
	assert.Equal(t, 6, p.Attempts())
	assert.Equal(t, 1, RetryPolicy{MaxRetries: -1}.Attempts())
}

func TestFetch_SuccessAfterTwoServerErrors(t *testing.T) {
	server, calls := statusSequence(t, http.StatusInternalServerError, http.StatusBadGateway, http.StatusOK)
	rec := &recordingSleep{}
	f := New(WithSleep(rec.sleep))

	policy := RetryPolicy{MaxRetries: 2, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
	body, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, policy)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.delays)
}

func TestFetch_BackoffCappedAtMaxDelay(t *testing.T) {
	server, _ := statusSequence(t, http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK)
	rec := &recordingSleep{}
	f := New(WithSleep(rec.sleep))

	policy := RetryPolicy{MaxRetries: 2, BaseDelay: 100 * time.Millisecond, MaxDelay: 150 * time.Millisecond}
	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, policy)

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond}, rec.delays)
}

func TestFetch_NotFoundIsTerminal(t *testing.T) {
	server, calls := statusSequence(t, http.StatusNotFound, http.StatusOK)
	rec := &recordingSleep{}
	f := New(WithSleep(rec.sleep))

	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, DefaultPolicy)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Empty(t, rec.delays)
}

func TestFetch_ClientErrorIsTerminal(t *testing.T) {
	server, calls := statusSequence(t, http.StatusForbidden, http.StatusOK)
	rec := &recordingSleep{}
	f := New(WithSleep(rec.sleep))

	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, DefaultPolicy)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Empty(t, rec.delays)
}

func TestFetch_RateLimitedIsRetried(t *testing.T) {
	server, calls := statusSequence(t, http.StatusTooManyRequests, http.StatusOK)
	rec := &recordingSleep{}
	f := New(WithSleep(rec.sleep))

	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, DefaultPolicy)

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Len(t, rec.delays, 1)
}

func TestFetch_ExhaustedReturnsLastError(t *testing.T) {
	server, calls := statusSequence(t, http.StatusInternalServerError, http.StatusInternalServerError, http.StatusServiceUnavailable)
	rec := &recordingSleep{}
	f := New(WithSleep(rec.sleep))

	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, DefaultPolicy)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.Len(t, rec.delays, 2)
}

func TestFetch_ZeroRetriesMakesOneAttempt(t *testing.T) {
	server, calls := statusSequence(t, http.StatusInternalServerError, http.StatusOK)
	f := New(WithSleep((&recordingSleep{}).sleep))

	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, RetryPolicy{})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestFetch_SendsHeaders(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	f := New()
	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{
		Headers: map[string]string{"User-Agent": "LibraryCatalog/1.0"},
	}, DefaultPolicy)

	require.NoError(t, err)
	assert.Equal(t, "LibraryCatalog/1.0", gotAgent)
}

func TestFetch_AttemptTimeoutIsRetryable(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rec := &recordingSleep{}
	f := New(WithSleep(rec.sleep), WithAttemptTimeout(20*time.Millisecond))

	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{}, DefaultPolicy)

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Len(t, rec.delays, 1)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("connection reset")))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: 500}))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: 429}))
	assert.False(t, IsRetryable(&HTTPError{StatusCode: 404}))
	assert.False(t, IsRetryable(&HTTPError{StatusCode: 400}))
}
