package service

import (
	"sync"
	"time"

	"github.com/okian/marquee/pkg/metrics"
)

// debouncer keeps the last viewport of a resize burst and commits it once
// no resize has arrived for delay.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	stopped bool
	width   float64
	height  float64
	commit  func(width, height float64)
}

func newDebouncer(delay time.Duration, commit func(width, height float64)) *debouncer {
	return &debouncer{delay: delay, commit: commit}
}

// Push records a viewport. It reports whether an earlier pending viewport
// was replaced.
func (d *debouncer) Push(width, height float64) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	if d.delay <= 0 {
		d.mu.Unlock()
		d.commit(width, height)
		return false
	}

	coalesced := d.pending
	d.width, d.height = width, height
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	} else {
		d.timer.Reset(d.delay)
	}
	d.mu.Unlock()

	if coalesced {
		metrics.RecordResizeCoalesced()
	}
	return coalesced
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	w, h := d.width, d.height
	d.mu.Unlock()

	d.commit(w, h)
}

// Stop drops any pending viewport.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
