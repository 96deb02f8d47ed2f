package timer

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/clock"
)

// ErrNotStopped is returned by Resume when there is no pause to resume from.
var ErrNotStopped = errors.New("timer: resume without prior stop")

// Timer is a restartable countdown with pause/resume. It is not safe for
// concurrent use; each instance belongs to a single control loop.
type Timer struct {
	clock     clock.Clock
	duration  time.Duration
	running   bool
	startedAt time.Time
	stoppedAt time.Time
	paused    bool
}

func New(c clock.Clock, duration time.Duration) *Timer {
	t := &Timer{clock: c}
	t.Set(duration)
	return t
}

// Set overwrites the duration. A running timer keeps its start time.
func (t *Timer) Set(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	t.duration = duration
}

func (t *Timer) Reset(duration time.Duration) { t.Set(duration) }

// Start rebases the countdown to now.
func (t *Timer) Start() {
	t.startedAt = t.clock.Now()
	t.running = true
	t.paused = false
}

func (t *Timer) Restart() { t.Start() }

func (t *Timer) Stop() {
	t.running = false
	t.stoppedAt = t.clock.Now()
	t.paused = true
}

// Resume continues the countdown from where the last Stop froze it.
func (t *Timer) Resume() error {
	if !t.paused {
		log.Warn().Dur("duration", t.duration).Bool("running", t.running).Msg("Timer resume called without a prior stop")
		return ErrNotStopped
	}
	t.startedAt = t.startedAt.Add(t.clock.Now().Sub(t.stoppedAt))
	t.running = true
	t.paused = false
	return nil
}

// Expired reports whether the deadline has passed. A timer that is not running
// is expired. The first call that observes the deadline stops the timer.
func (t *Timer) Expired() bool {
	if !t.running {
		return true
	}
	if t.clock.Now().Sub(t.startedAt) >= t.duration {
		t.running = false
		return true
	}
	return false
}

// Remaining returns the time left. A stopped timer reports its full duration.
func (t *Timer) Remaining() time.Duration {
	if !t.running {
		return t.duration
	}
	left := t.startedAt.Add(t.duration).Sub(t.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

func (t *Timer) Running() bool { return t.running }

func (t *Timer) Duration() time.Duration { return t.duration }
