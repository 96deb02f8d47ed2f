package clock

import (
	"sync"
	"time"
)

// Clock is the only time source used by the control loop. Values returned by
// Now carry a monotonic reading, so differences between them are immune to
// wall-clock adjustments.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type Real struct{}

func (Real) Now() time.Time        { return time.Now() }
func (Real) Sleep(d time.Duration) { time.Sleep(d) }

// Fake is a manually driven clock for tests. Sleep advances time instead of blocking.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	slept  time.Duration
	sleeps int
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d <= 0 {
		return
	}
	f.now = f.now.Add(d)
	f.slept += d
	f.sleeps++
}

// Advance moves time forward without counting as a sleep.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d > 0 {
		f.now = f.now.Add(d)
	}
}

// Slept reports the total duration and number of calls to Sleep.
func (f *Fake) Slept() (time.Duration, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slept, f.sleeps
}
