package notification

import (
	"math"
	"sync/atomic"
	"time"
)

// never marks a Debouncer that has not accepted anything yet. Zero is a real
// instant (the Unix epoch), so the sentinel sits outside the range UnixNano
// reports for any clock we can read.
const never int64 = math.MinInt64

// Debouncer is a lock-free gate that accepts at most one call per window.
// The timestamp of the last accepted call is swapped in with a
// compare-and-swap, so concurrent callers racing inside one window see
// exactly one true.
type Debouncer struct {
	window time.Duration
	now    func() time.Time
	last   atomic.Int64 // unix nanos of the last accepted call, or never
}

// NewDebouncer creates a debouncer with the given window. A nil clock means
// time.Now.
func NewDebouncer(window time.Duration, clock func() time.Time) *Debouncer {
	if clock == nil {
		clock = time.Now
	}
	d := &Debouncer{
		window: window,
		now:    clock,
	}
	d.last.Store(never)
	return d
}

// Allow reports whether the window since the last accepted call has passed,
// and if so records now as the new last accepted call.
//
// A clock that steps backwards makes elapsed negative, which keeps the gate
// closed until the clock catches up with last+window.
func (d *Debouncer) Allow() bool {
	for {
		last := d.last.Load()
		now := d.now().UnixNano()

		if last != never && time.Duration(now-last) < d.window {
			return false
		}

		if d.last.CompareAndSwap(last, now) {
			return true
		}
	}
}

// Reset re-arms the gate.
func (d *Debouncer) Reset() {
	d.last.Store(never)
}

// Last returns the time of the last accepted call, or the zero time.
func (d *Debouncer) Last() time.Time {
	last := d.last.Load()
	if last == never {
		return time.Time{}
	}
	return time.Unix(0, last)
}

// Window returns the debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
