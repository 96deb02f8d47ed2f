package sleepadjust

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/clock"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
	"github.com/thatsimonsguy/fireplace-controller/internal/peripheral"
	"github.com/thatsimonsguy/fireplace-controller/internal/timer"
)

const (
	DefaultIncrement          = 12 * time.Minute
	DefaultSegments           = 10
	DefaultKeyRepeat          = 400 * time.Millisecond
	DefaultInteractionTimeout = 3 * time.Second
	DefaultPollInterval       = 5 * time.Millisecond
)

var DefaultEditColor = model.Color{R: 0, G: 0, B: 100}

type Config struct {
	// Increment is the sleep time one gauge segment represents.
	Increment time.Duration
	// Segments is the gauge length; the maximum sleep is Segments increments.
	Segments  int
	KeyRepeat time.Duration
	// PollInterval paces polling while no button is held.
	PollInterval time.Duration
	EditColor    model.Color
	PixelCount   int
}

func DefaultConfig() Config {
	return Config{
		Increment:    DefaultIncrement,
		Segments:     DefaultSegments,
		KeyRepeat:    DefaultKeyRepeat,
		PollInterval: DefaultPollInterval,
		EditColor:    DefaultEditColor,
		PixelCount:   DefaultSegments,
	}
}

func (c Config) Max() time.Duration {
	return time.Duration(c.Segments) * c.Increment
}

// Controller runs the modal editing session entered when a button is held.
// The timers belong to the scheduler and are lent for the session.
type Controller struct {
	cfg    Config
	clock  clock.Clock
	strip  peripheral.Strip
	inputs peripheral.Inputs

	sleepTimer *timer.Timer
	idleTimer  *timer.Timer
}

func New(cfg Config, c clock.Clock, strip peripheral.Strip, inputs peripheral.Inputs, sleepTimer, idleTimer *timer.Timer) *Controller {
	return &Controller{
		cfg:        cfg,
		clock:      c,
		strip:      strip,
		inputs:     inputs,
		sleepTimer: sleepTimer,
		idleTimer:  idleTimer,
	}
}

// Run blocks until the idle timer expires without a button press, then starts
// the sleep countdown with the edited duration.
func (c *Controller) Run(st *model.State) {
	st.Sleeping = true
	c.sleepTimer.Stop()
	st.SleepDuration = c.sleepTimer.Remaining()

	log.Info().
		Dur("sleep_duration", st.SleepDuration).
		Bool("fire_on", st.FireOn).
		Msg("Entering sleep timer edit")

	c.showSleepTime()
	c.clock.Sleep(c.cfg.KeyRepeat)
	c.idleTimer.Start()

	for !c.idleTimer.Expired() {
		up := c.inputs.ReadButton(model.ButtonA)
		down := c.inputs.ReadButton(model.ButtonB)
		if !up && !down {
			c.clock.Sleep(c.cfg.PollInterval)
			continue
		}

		// A wins when both are held
		if up {
			st.SleepDuration = min(c.cfg.Max(), st.SleepDuration+c.cfg.Increment)
		} else {
			st.SleepDuration = max(0, st.SleepDuration-c.cfg.Increment)
		}
		c.sleepTimer.Set(Quantize(st.SleepDuration, c.cfg.Increment))

		log.Debug().
			Bool("up", up).
			Dur("sleep_duration", st.SleepDuration).
			Int("segments", LitSegments(c.sleepTimer.Remaining(), c.cfg.Increment, c.cfg.Segments)).
			Msg("Adjusted sleep timer")

		c.showSleepTime()
		c.clock.Sleep(c.cfg.KeyRepeat)
		c.idleTimer.Restart()
		st.FireOn = true
	}

	c.sleepTimer.Start()
	log.Info().
		Dur("sleep_duration", c.sleepTimer.Duration()).
		Msg("Sleep timer committed")
}

func (c *Controller) showSleepTime() {
	c.strip.Show(Gauge(c.sleepTimer.Remaining(), c.cfg.Increment, c.cfg.Segments, c.cfg.PixelCount, c.cfg.EditColor))
}
