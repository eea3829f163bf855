// Package clock abstracts wall time and periodic tasks so timers can be driven
// by a virtual clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time and schedules periodic work.
type Clock interface {
	Now() time.Time
	// Every calls fn once per interval until the returned task is stopped.
	Every(interval time.Duration, fn func()) Task
}

// Task is a cancellable periodic job. Stop is idempotent and never blocks,
// so it may be called from inside the job itself.
type Task interface {
	Stop()
}

// Real is the wall-clock implementation backed by time.Ticker.
type Real struct{}

// New returns the wall clock.
func New() Clock { return Real{} }

func (Real) Now() time.Time { return time.Now() }

func (Real) Every(interval time.Duration, fn func()) Task {
	t := &realTask{
		ticker: time.NewTicker(interval),
		quit:   make(chan struct{}),
	}
	go t.run(fn)
	return t
}

type realTask struct {
	ticker *time.Ticker
	quit   chan struct{}
	once   sync.Once
}

func (t *realTask) run(fn func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.quit:
			return
		case <-t.ticker.C:
			// a tick and a stop can be ready together; stop wins
			select {
			case <-t.quit:
				return
			default:
			}
			fn()
		}
	}
}

func (t *realTask) Stop() {
	t.once.Do(func() { close(t.quit) })
}
