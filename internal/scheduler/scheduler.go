package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/clock"
	"github.com/thatsimonsguy/fireplace-controller/internal/datadog"
	"github.com/thatsimonsguy/fireplace-controller/internal/flame"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
	"github.com/thatsimonsguy/fireplace-controller/internal/peripheral"
	"github.com/thatsimonsguy/fireplace-controller/internal/sleepadjust"
	"github.com/thatsimonsguy/fireplace-controller/internal/timer"
)

const (
	DefaultFrameInterval = 20 * time.Millisecond
	DefaultFadeSteps     = 10
	DefaultFadeFactor    = 0.6
	DefaultFadeStepDelay = 30 * time.Millisecond
)

var DefaultFireColor = model.Color{R: 255, G: 150, B: 0}

// Recorder receives state transitions for the event journal.
type Recorder interface {
	Record(e model.Event)
}

// Notifier pushes a message to the user when the fire goes out.
type Notifier interface {
	Send(title, message string) error
}

type Config struct {
	FireColor     model.Color
	FrameInterval time.Duration
	FadeSteps     int
	FadeFactor    float64
	FadeStepDelay time.Duration
	// InitialSleep is the countdown offered the first time the timer is edited.
	InitialSleep       time.Duration
	InteractionTimeout time.Duration

	Adjust sleepadjust.Config
	Flame  flame.Config
}

func DefaultConfig() Config {
	return Config{
		FireColor:          DefaultFireColor,
		FrameInterval:      DefaultFrameInterval,
		FadeSteps:          DefaultFadeSteps,
		FadeFactor:         DefaultFadeFactor,
		FadeStepDelay:      DefaultFadeStepDelay,
		InitialSleep:       sleepadjust.DefaultIncrement,
		InteractionTimeout: sleepadjust.DefaultInteractionTimeout,
		Adjust:             sleepadjust.DefaultConfig(),
		Flame:              flame.DefaultConfig(),
	}
}

// Deps are the collaborators of the tick loop. Recorder and Notifier may be nil.
type Deps struct {
	Clock    clock.Clock
	Strip    peripheral.Strip
	Inputs   peripheral.Inputs
	Audio    peripheral.Audio
	Random   flame.Random
	Recorder Recorder
	Notifier Notifier
}

// Status is a snapshot of the loop, published at the end of every tick.
type Status struct {
	Sleeping       bool          `json:"sleeping"`
	FireOn         bool          `json:"fire_on"`
	AudioPlaying   bool          `json:"audio_playing"`
	Editing        bool          `json:"editing"`
	SleepRemaining time.Duration `json:"sleep_remaining"`
	LitSegments    int           `json:"lit_segments"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Scheduler owns the sleep and idle timers and all mode flags. Tick and Run
// must be called from a single goroutine; Status may be called from any.
type Scheduler struct {
	cfg  Config
	deps Deps

	state      model.State
	sleepTimer *timer.Timer
	idleTimer  *timer.Timer
	animator   *flame.Animator
	adjust     *sleepadjust.Controller

	mu     sync.RWMutex
	status Status
}

func New(cfg Config, deps Deps) *Scheduler {
	if deps.Random == nil {
		deps.Random = flame.NewRandom(deps.Clock.Now().UnixNano())
	}

	s := &Scheduler{
		cfg:        cfg,
		deps:       deps,
		state:      model.State{FireOn: true, SleepDuration: cfg.InitialSleep},
		sleepTimer: timer.New(deps.Clock, cfg.InitialSleep),
		idleTimer:  timer.New(deps.Clock, cfg.InteractionTimeout),
	}
	s.animator = flame.New(cfg.Flame, model.Fill(cfg.FireColor, cfg.Adjust.PixelCount), deps.Random)
	s.adjust = sleepadjust.New(cfg.Adjust, deps.Clock, deps.Strip, deps.Inputs, s.sleepTimer, s.idleTimer)
	s.publish(false)
	return s
}

// Run ticks until ctx is cancelled, then darkens the strip and stops audio.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().
		Int("pixels", s.cfg.Adjust.PixelCount).
		Dur("frame_interval", s.cfg.FrameInterval).
		Dur("initial_sleep", s.cfg.InitialSleep).
		Msg("Starting fireplace scheduler")

	for {
		select {
		case <-ctx.Done():
			s.deps.Strip.Show(model.Fill(model.Black, s.cfg.Adjust.PixelCount))
			s.stopAudio()
			s.publish(false)
			log.Info().Msg("Fireplace scheduler stopped")
			return nil
		default:
		}
		s.Tick()
	}
}

// Tick runs one iteration of the control loop.
func (s *Scheduler) Tick() {
	// inputs are sampled once, before any state changes
	up := s.deps.Inputs.ReadButton(model.ButtonA)
	down := s.deps.Inputs.ReadButton(model.ButtonB)
	switchOn := s.deps.Inputs.ReadSwitch()

	if up || down {
		s.publish(true)
		s.adjust.Run(&s.state)
		s.record(model.EventSleepSet, s.sleepTimer.Duration())
		datadog.Gauge("sleep.committed_seconds", s.sleepTimer.Duration().Seconds())
		s.publish(false)
		return
	}

	if s.state.Sleeping && s.sleepTimer.Expired() {
		if s.state.FireOn {
			s.fireOut()
		}
		s.publish(false)
		s.deps.Clock.Sleep(s.cfg.Adjust.PollInterval)
		return
	}

	s.reconcileAudio(switchOn)
	s.deps.Strip.Show(s.animator.Tick())
	s.publish(false)
	s.deps.Clock.Sleep(s.cfg.FrameInterval)
}

func (s *Scheduler) fireOut() {
	log.Info().Msg("Sleep timer expired, fading out fire")

	s.fadeOut()
	s.stopAudio()
	s.state.FireOn = false
	s.sleepTimer.Set(0)

	s.record(model.EventFireOut, 0)
	datadog.Incr("fire.out")

	if s.deps.Notifier != nil {
		n := s.deps.Notifier
		at := s.deps.Clock.Now()
		go func() {
			msg := fmt.Sprintf("The fire went out at %s", at.Format("15:04"))
			if err := n.Send("Fireplace", msg); err != nil {
				log.Warn().Err(err).Msg("Failed to send fire out notification")
			}
		}()
	}
}

// fadeOut dims every pixel together, compounding FadeFactor at each step.
func (s *Scheduler) fadeOut() {
	c := s.cfg.FireColor
	for i := 0; i < s.cfg.FadeSteps; i++ {
		c = c.Scale(s.cfg.FadeFactor)
		s.deps.Strip.Show(model.Fill(c, s.cfg.Adjust.PixelCount))
		s.deps.Clock.Sleep(s.cfg.FadeStepDelay)
	}
}

// reconcileAudio makes playback match the switch. Safe to call every tick.
func (s *Scheduler) reconcileAudio(switchOn bool) {
	switch {
	case switchOn && !s.state.AudioPlaying:
		log.Info().Msg("Sound switch on, starting fire sound")
		s.deps.Audio.Play(true)
		s.state.AudioPlaying = true
		s.record(model.EventAudioStarted, 0)
	case !switchOn && s.state.AudioPlaying:
		log.Info().Msg("Sound switch off, stopping fire sound")
		s.stopAudio()
	}
}

func (s *Scheduler) stopAudio() {
	s.deps.Audio.Stop()
	if s.state.AudioPlaying {
		s.state.AudioPlaying = false
		s.record(model.EventAudioStopped, 0)
	}
}

func (s *Scheduler) record(kind model.EventKind, sleep time.Duration) {
	if s.deps.Recorder == nil {
		return
	}
	s.deps.Recorder.Record(model.Event{
		Kind:          kind,
		SleepDuration: sleep,
		OccurredAt:    s.deps.Clock.Now(),
	})
}

func (s *Scheduler) publish(editing bool) {
	st := Status{
		Sleeping:     s.state.Sleeping,
		FireOn:       s.state.FireOn,
		AudioPlaying: s.state.AudioPlaying,
		Editing:      editing,
		UpdatedAt:    s.deps.Clock.Now(),
	}
	if s.state.Sleeping {
		st.SleepRemaining = s.sleepTimer.Remaining()
		st.LitSegments = sleepadjust.LitSegments(st.SleepRemaining, s.cfg.Adjust.Increment, s.cfg.Adjust.Segments)
	}

	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// State returns the mode flags. Only call from the loop goroutine.
func (s *Scheduler) State() model.State {
	return s.state
}
