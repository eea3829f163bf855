package app

import (
	"sync"
	"time"

	"quiz-assessment-service/internal/clock"
)

// Countdown decrements the remaining time once per second and fires onExpire
// exactly once when it reaches zero.
type Countdown struct {
	clock    clock.Clock
	onTick   func(remaining int)
	onExpire func()

	mu        sync.Mutex
	task      clock.Task
	remaining int
	started   bool
	stopped   bool
	expired   bool
}

func NewCountdown(clk clock.Clock, seconds int, onTick func(int), onExpire func()) *Countdown {
	if onTick == nil {
		onTick = func(int) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Countdown{clock: clk, remaining: seconds, onTick: onTick, onExpire: onExpire}
}

// Start schedules the ticks. It is a no-op once started or stopped.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return
	}
	c.started = true
	c.task = c.clock.Every(time.Second, c.tick)
}

// Stop cancels the task and freezes the remaining time. Safe to call repeatedly
// and from inside onExpire.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopped = true
	task := c.task
	c.mu.Unlock()
	if task != nil {
		task.Stop()
	}
}

// Remaining reports the seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Expired reports whether the countdown reached zero on its own.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

func (c *Countdown) tick() {
	c.mu.Lock()
	if c.stopped || c.expired {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	fire := remaining == 0
	if fire {
		c.expired = true
	}
	task := c.task
	c.mu.Unlock()

	c.onTick(remaining)
	if fire {
		task.Stop()
		c.onExpire()
	}
}
