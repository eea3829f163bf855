package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced clock. Due tasks run synchronously inside Advance,
// in the goroutine that called it.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*fakeTask
}

// NewFake returns a fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Every(interval time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTask{clock: f, interval: interval, next: f.now.Add(interval), fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Advance moves the clock forward by d, running every tick that falls due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		due := f.nextDueLocked(target)
		if due == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = due.next
		due.next = due.next.Add(due.interval)
		fn := due.fn
		f.mu.Unlock()

		fn()
	}
}

// Tasks reports how many scheduled tasks are still running.
func (f *Fake) Tasks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTask {
	var due *fakeTask
	for _, t := range f.tasks {
		if t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) {
			due = t
		}
	}
	return due
}

func (f *Fake) remove(t *fakeTask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, candidate := range f.tasks {
		if candidate == t {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return
		}
	}
}

type fakeTask struct {
	clock    *Fake
	interval time.Duration
	next     time.Time
	fn       func()
}

func (t *fakeTask) Stop() {
	t.clock.remove(t)
}
