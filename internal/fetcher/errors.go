// file: internal/fetcher/errors.go
// version: 1.0.0
// guid: e0968ac8-c573-49a6-9574-5867f5aa2b8c

package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound marks a provider 404. It is an authoritative negative answer
// and is never retried.
var ErrNotFound = errors.New("resource not found")

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsRetryable classifies an error returned by a single attempt.
// Client errors (4xx) are terminal except 429; everything else, including
// transport failures, timeouts and 5xx, may be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			return false
		}
		return true
	}
	return true
}

// errorKind is used as a metrics label.
func errorKind(err error) string {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case errors.As(err, &httpErr) && httpErr.StatusCode >= 500:
		return "server_error"
	case errors.As(err, &httpErr):
		return "client_error"
	default:
		return "network"
	}
}
