package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/thatsimonsguy/fireplace-controller/internal/clock"
	"github.com/thatsimonsguy/fireplace-controller/internal/flame"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
	"github.com/thatsimonsguy/fireplace-controller/internal/peripheral/peripheraltest"
	"github.com/thatsimonsguy/fireplace-controller/internal/sleepadjust"
)

var t0 = time.Date(2024, 1, 12, 22, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Record(e model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []model.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.EventKind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recorder) last() model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type notifier struct {
	sent chan string
}

func (n *notifier) Send(title, message string) error {
	n.sent <- title + ": " + message
	return nil
}

type harness struct {
	clock    *clock.Fake
	strip    *peripheraltest.Strip
	inputs   *peripheraltest.Inputs
	audio    *peripheraltest.Audio
	recorder *recorder
	sched    *Scheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	c := clock.NewFake(t0)
	h := &harness{
		clock:    c,
		strip:    &peripheraltest.Strip{},
		inputs:   peripheraltest.NewInputs(c),
		audio:    &peripheraltest.Audio{},
		recorder: &recorder{},
	}
	h.sched = New(DefaultConfig(), Deps{
		Clock:    c,
		Strip:    h.strip,
		Inputs:   h.inputs,
		Audio:    h.audio,
		Random:   flame.NewRandom(1),
		Recorder: h.recorder,
	})
	return h
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.sched.Tick()
	}
}

// advanceTo moves the fake clock to offset from t0.
func (h *harness) advanceTo(offset time.Duration) {
	h.clock.Advance(t0.Add(offset).Sub(h.clock.Now()))
}

func litCount(frame []model.Color) int {
	n := 0
	for _, px := range frame {
		if px == sleepadjust.DefaultEditColor {
			n++
		}
	}
	return n
}

func TestPerpetualBurn(t *testing.T) {
	h := newHarness(t)

	h.ticks(100)

	frames := h.strip.Frames()
	require.Len(t, frames, 100)
	for _, frame := range frames {
		require.Len(t, frame, sleepadjust.DefaultSegments)
		for _, px := range frame {
			assert.LessOrEqual(t, px.R, DefaultFireColor.R)
			assert.LessOrEqual(t, px.G, DefaultFireColor.G)
			assert.Zero(t, px.B)
		}
	}

	st := h.sched.State()
	assert.True(t, st.FireOn)
	assert.False(t, st.Sleeping)

	slept, sleeps := h.clock.Slept()
	assert.Equal(t, 100*DefaultFrameInterval, slept)
	assert.Equal(t, 100, sleeps)
}

func TestAudioFollowsSwitch(t *testing.T) {
	h := newHarness(t)

	h.inputs.SetSwitch(true)
	h.ticks(50)
	plays, stops := h.audio.Calls()
	assert.Equal(t, 1, plays, "playback starts once")
	assert.Equal(t, 0, stops)
	assert.True(t, h.audio.Looped())
	assert.True(t, h.sched.State().AudioPlaying)

	h.inputs.SetSwitch(false)
	h.ticks(50)
	plays, stops = h.audio.Calls()
	assert.Equal(t, 1, plays)
	assert.Equal(t, 1, stops, "playback stops once")
	assert.False(t, h.sched.State().AudioPlaying)

	assert.Equal(t, []model.EventKind{model.EventAudioStarted, model.EventAudioStopped}, h.recorder.kinds())
}

func TestButtonPressEditsSleepTimer(t *testing.T) {
	h := newHarness(t)
	h.inputs.Hold(model.ButtonA, 0, time.Second)

	h.sched.Tick()

	frames := h.strip.Frames()
	var lit []int
	for _, f := range frames {
		lit = append(lit, litCount(f))
	}
	// the entry frame shows the initial sleep, then two repeats while held
	assert.Equal(t, []int{1, 2, 3}, lit)

	st := h.sched.State()
	assert.True(t, st.Sleeping)
	assert.True(t, st.FireOn)
	assert.Equal(t, 36*time.Minute, st.SleepDuration)

	// keypress at 400ms and 800ms, then the idle timeout from 1.2s
	assert.Equal(t, t0.Add(1200*time.Millisecond+sleepadjust.DefaultInteractionTimeout), h.clock.Now())

	status := h.sched.Status()
	assert.True(t, status.Sleeping)
	assert.False(t, status.Editing)
	assert.Equal(t, 36*time.Minute, status.SleepRemaining)
	assert.Equal(t, 3, status.LitSegments)

	require.Equal(t, []model.EventKind{model.EventSleepSet}, h.recorder.kinds())
	assert.Equal(t, 36*time.Minute, h.recorder.last().SleepDuration)
}

func TestSleepCountsDownWhileBurning(t *testing.T) {
	h := newHarness(t)
	h.inputs.Hold(model.ButtonA, 0, time.Second)
	h.sched.Tick()
	h.strip.Reset()

	h.clock.Advance(10 * time.Minute)
	h.sched.Tick()

	require.Len(t, h.strip.Frames(), 1, "flame keeps animating until expiry")
	status := h.sched.Status()
	assert.Equal(t, 26*time.Minute, status.SleepRemaining)
	assert.Equal(t, 3, status.LitSegments)
	assert.True(t, status.FireOn)
}

func TestExpiryFadesOutOnce(t *testing.T) {
	h := newHarness(t)
	h.inputs.SetSwitch(true)
	h.inputs.Hold(model.ButtonA, 0, time.Second)
	h.sched.Tick()
	h.sched.Tick()
	require.True(t, h.audio.Playing())
	h.strip.Reset()

	h.clock.Advance(36 * time.Minute)
	h.sched.Tick()

	frames := h.strip.Frames()
	require.Len(t, frames, DefaultFadeSteps)
	prev := DefaultFireColor
	for _, f := range frames {
		for _, px := range f {
			assert.Equal(t, f[0], px, "every pixel fades together")
		}
		assert.LessOrEqual(t, f[0].R, prev.R)
		assert.LessOrEqual(t, f[0].G, prev.G)
		prev = f[0]
	}
	assert.Equal(t, model.Color{R: 1, G: 1, B: 0}, frames[len(frames)-1][0])

	st := h.sched.State()
	assert.False(t, st.FireOn)
	assert.True(t, st.Sleeping)
	assert.False(t, st.AudioPlaying)
	assert.False(t, h.audio.Playing())

	status := h.sched.Status()
	assert.Zero(t, status.SleepRemaining)
	assert.Zero(t, status.LitSegments)
	assert.False(t, status.FireOn)

	// the dark fireplace stays dark and silent
	h.strip.Reset()
	h.ticks(20)
	assert.Empty(t, h.strip.Frames())
	plays, _ := h.audio.Calls()
	assert.Equal(t, 1, plays)

	assert.Equal(t, []model.EventKind{
		model.EventSleepSet,
		model.EventAudioStarted,
		model.EventAudioStopped,
		model.EventFireOut,
	}, h.recorder.kinds())
}

func TestRelightAfterFireOut(t *testing.T) {
	h := newHarness(t)
	h.inputs.SetSwitch(true)
	h.inputs.Hold(model.ButtonA, 0, time.Second)
	h.sched.Tick()

	h.clock.Advance(37 * time.Minute)
	h.sched.Tick()
	require.False(t, h.sched.State().FireOn)

	h.inputs.Hold(model.ButtonA, 40*time.Minute, 40*time.Minute+500*time.Millisecond)
	h.advanceTo(40 * time.Minute)
	h.strip.Reset()
	h.sched.Tick()

	frames := h.strip.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, 0, litCount(frames[0]), "entry shows the expired timer")
	assert.Equal(t, 1, litCount(frames[1]))

	st := h.sched.State()
	assert.True(t, st.FireOn)
	assert.Equal(t, 12*time.Minute, st.SleepDuration)

	h.strip.Reset()
	h.sched.Tick()
	assert.Len(t, h.strip.Frames(), 1, "flame animates again")
	assert.True(t, h.audio.Playing(), "sound resumes with the switch on")
}

func TestZeroSleepFadesImmediately(t *testing.T) {
	h := newHarness(t)
	h.inputs.Hold(model.ButtonB, 0, 500*time.Millisecond)

	h.sched.Tick()
	st := h.sched.State()
	require.Zero(t, st.SleepDuration)
	assert.True(t, st.FireOn, "an adjustment always relights")

	h.strip.Reset()
	h.sched.Tick()
	assert.Len(t, h.strip.Frames(), DefaultFadeSteps)
	assert.False(t, h.sched.State().FireOn)
}

func TestNotifierOnFireOut(t *testing.T) {
	c := clock.NewFake(t0)
	inputs := peripheraltest.NewInputs(c)
	n := &notifier{sent: make(chan string, 1)}
	s := New(DefaultConfig(), Deps{
		Clock:    c,
		Strip:    &peripheraltest.Strip{},
		Inputs:   inputs,
		Audio:    &peripheraltest.Audio{},
		Random:   flame.NewRandom(1),
		Notifier: n,
	})

	inputs.Hold(model.ButtonB, 0, 500*time.Millisecond)
	s.Tick()
	s.Tick()

	select {
	case msg := <-n.sent:
		assert.Contains(t, msg, "The fire went out at")
	case <-time.After(time.Second):
		t.Fatal("expected a fire out notification")
	}
}

type probeStrip struct {
	peripheraltest.Strip
	onShow func()
}

func (p *probeStrip) Show(frame []model.Color) {
	p.Strip.Show(frame)
	if p.onShow != nil {
		p.onShow()
	}
}

func TestStatusReportsEditing(t *testing.T) {
	c := clock.NewFake(t0)
	inputs := peripheraltest.NewInputs(c)
	strip := &probeStrip{}
	s := New(DefaultConfig(), Deps{
		Clock:  c,
		Strip:  strip,
		Inputs: inputs,
		Audio:  &peripheraltest.Audio{},
		Random: flame.NewRandom(1),
	})

	var editing []bool
	strip.onShow = func() { editing = append(editing, s.Status().Editing) }

	inputs.Hold(model.ButtonA, 0, 100*time.Millisecond)
	s.Tick()
	s.Tick()

	assert.Equal(t, []bool{true, false}, editing)
}

type cancelStrip struct {
	peripheraltest.Strip
	after  int
	cancel context.CancelFunc
}

func (c *cancelStrip) Show(frame []model.Color) {
	c.Strip.Show(frame)
	if len(c.Strip.Frames()) == c.after {
		c.cancel()
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := clock.NewFake(t0)
	inputs := peripheraltest.NewInputs(c)
	inputs.SetSwitch(true)
	strip := &cancelStrip{after: 25, cancel: cancel}
	audio := &peripheraltest.Audio{}

	s := New(DefaultConfig(), Deps{
		Clock:  c,
		Strip:  strip,
		Inputs: inputs,
		Audio:  audio,
		Random: flame.NewRandom(1),
	})

	require.NoError(t, s.Run(ctx))

	frames := strip.Frames()
	require.Len(t, frames, 26)
	assert.Equal(t, model.Fill(model.Black, sleepadjust.DefaultSegments), frames[25])
	assert.False(t, audio.Playing())
	assert.False(t, s.Status().AudioPlaying)
}
