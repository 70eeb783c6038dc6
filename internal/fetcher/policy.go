// file: internal/fetcher/policy.go
// version: 1.0.0
// guid: 285d3454-4d9e-4c38-bf52-26b98a4e4115

package fetcher

import "time"

// RetryPolicy bounds the attempts made for a single request. The number of
// attempts is MaxRetries+1.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultPolicy is used by every provider adapter.
var DefaultPolicy = RetryPolicy{
	MaxRetries: 2,
	BaseDelay:  500 * time.Millisecond,
	MaxDelay:   3 * time.Second,
}

// Attempts returns the total number of attempts permitted by the policy.
func (p RetryPolicy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Delay returns the backoff to wait before retrying after the given
// zero-based attempt: min(BaseDelay * 2^attempt, MaxDelay).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
