package websocket

import (
	"sync"
	"time"
)

// timerSet tracks pending time.AfterFunc callbacks so they can be cancelled together.
type timerSet struct {
	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
}

func newTimerSet() *timerSet {
	return &timerSet{timers: make(map[*time.Timer]struct{})}
}

func (ts *timerSet) after(d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.stopped {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		ts.mu.Lock()
		_, pending := ts.timers[t]
		delete(ts.timers, t)
		ts.mu.Unlock()
		if pending {
			fn()
		}
	})
	ts.timers[t] = struct{}{}
}

// stop cancels every pending callback and refuses new ones.
func (ts *timerSet) stop() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.stopped = true
	cancelled := 0
	for t := range ts.timers {
		if t.Stop() {
			cancelled++
		}
		delete(ts.timers, t)
	}
	return cancelled
}

func (ts *timerSet) pending() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.timers)
}
