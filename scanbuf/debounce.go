package scanbuf

import (
	"sync"
	"time"
)

// Timer is a pending delayed call.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls. The zero Config uses the wall clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer keeps at most one pending call per key. Scheduling a key that
// already has a pending call replaces it.
type Debouncer struct {
	mu    sync.Mutex
	clock Clock
	gen   uint64
	slots map[string]*slot
}

type slot struct {
	timer Timer
	gen   uint64
}

// NewDebouncer returns a Debouncer on clock, or the wall clock if nil.
func NewDebouncer(clock Clock) *Debouncer {
	if clock == nil {
		clock = wallClock{}
	}
	return &Debouncer{
		clock: clock,
		slots: make(map[string]*slot),
	}
}

// Schedule cancels any pending call for key and arranges for fn to run
// after delay. A superseded timer that fires anyway does not run fn.
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.slots[key]; ok {
		s.timer.Stop()
	}
	d.gen++
	gen := d.gen
	s := &slot{gen: gen}
	d.slots[key] = s
	s.timer = d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		cur, ok := d.slots[key]
		if !ok || cur.gen != gen {
			d.mu.Unlock()
			return
		}
		delete(d.slots, key)
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call for key. It reports whether one existed.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.slots[key]
	if !ok {
		return false
	}
	s.timer.Stop()
	delete(d.slots, key)
	return true
}

// Pending reports whether key has a call waiting.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.slots[key]
	return ok
}

// Stop cancels every pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, s := range d.slots {
		s.timer.Stop()
		delete(d.slots, key)
	}
}
