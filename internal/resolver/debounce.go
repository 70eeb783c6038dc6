// file: internal/resolver/debounce.go
// version: 1.0.0
// guid: e7f63928-81f3-4722-b273-a48529ce1017

package resolver

import (
	"sync"
	"time"
)

// DefaultDebounceWindow suppresses duplicate scans of the same barcode.
const DefaultDebounceWindow = 300 * time.Millisecond

// Debouncer rejects calls that arrive within window of the previous
// accepted call. A zero window accepts everything.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   time.Time
}

// NewDebouncer creates a Debouncer using now as its clock.
func NewDebouncer(window time.Duration, now func() time.Time) *Debouncer {
	if now == nil {
		now = time.Now
	}
	return &Debouncer{window: window, now: now}
}

// Allow reports whether the call may proceed and, if so, records it as the
// last accepted call.
func (d *Debouncer) Allow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.now()
	if d.window > 0 && !d.last.IsZero() && t.Sub(d.last) < d.window {
		return false
	}
	d.last = t
	return true
}
