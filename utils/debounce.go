package utils

import (
	"sync"
	"time"
)

// Debouncer holds a single pending function. Scheduling a new one
// cancels whatever was pending, so rapid calls collapse into the last
// one, which fires after the configured delay of quiet.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a Debouncer with the given quiet window.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arranges for fn to run after the quiet window, replacing any
// previously scheduled function. The returned cancel func stops this
// particular scheduling; it is a no-op once fn has started or been
// superseded.
func (d *Debouncer) Schedule(fn func()) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	id := d.seq

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.seq == id
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.seq == id && d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
	}
}

// Cancel stops any pending scheduling.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}
