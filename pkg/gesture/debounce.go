package gesture

import (
	"sync"
	"time"
)

// Debouncer delivers the latest pushed value to a sink once pushes have been
// quiet for an interval. Flush delivers the pending value immediately and is
// the only way a gesture hands over its final value, so a value is never lost
// to a timer that was cancelled or has not fired yet.
//
// Deliveries are serialized: the sink never runs concurrently with itself,
// and a value pushed later is never delivered before one pushed earlier.
type Debouncer[T any] struct {
	interval time.Duration
	sink     func(T)

	deliver sync.Mutex // held while the sink runs

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	has     bool
}

// NewDebouncer creates a debouncer. An interval of zero or less delivers
// every push synchronously.
func NewDebouncer[T any](interval time.Duration, sink func(T)) *Debouncer[T] {
	return &Debouncer[T]{interval: interval, sink: sink}
}

// Push records v as the pending value and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	d.pending, d.has = v, true
	if d.interval <= 0 {
		d.mu.Unlock()
		d.Flush()
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, func() { d.fire() })
	} else {
		d.timer.Reset(d.interval)
	}
	d.mu.Unlock()
}

// Flush stops the timer and synchronously delivers the pending value, if
// any. It reports whether a value was delivered.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	return d.fire()
}

// Cancel stops the timer and drops the pending value.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	var zero T
	d.pending, d.has = zero, false
}

// Pending reports whether a value is waiting to be delivered.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.has
}

func (d *Debouncer[T]) fire() bool {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	v, ok := d.pending, d.has
	var zero T
	d.pending, d.has = zero, false
	d.mu.Unlock()

	if ok {
		d.sink(v)
	}
	return ok
}
