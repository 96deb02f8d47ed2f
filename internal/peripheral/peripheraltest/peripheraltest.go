// Package peripheraltest provides in-memory peripherals for tests.
package peripheraltest

import (
	"sync"
	"time"

	"github.com/thatsimonsguy/fireplace-controller/internal/clock"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

type Strip struct {
	mu     sync.Mutex
	frames [][]model.Color
}

func (s *Strip) Show(frame []model.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]model.Color, len(frame))
	copy(cp, frame)
	s.frames = append(s.frames, cp)
}

func (s *Strip) Frames() [][]model.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]model.Color, len(s.frames))
	copy(out, s.frames)
	return out
}

func (s *Strip) Last() []model.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *Strip) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

type hold struct {
	button   model.Button
	from, to time.Duration
}

// Inputs reports buttons as held during scripted windows of clock time,
// measured from the moment the Inputs was created.
type Inputs struct {
	mu       sync.Mutex
	clock    clock.Clock
	start    time.Time
	holds    []hold
	switchOn bool
}

func NewInputs(c clock.Clock) *Inputs {
	return &Inputs{clock: c, start: c.Now()}
}

// Hold marks b as pressed for offsets in [from, to).
func (i *Inputs) Hold(b model.Button, from, to time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.holds = append(i.holds, hold{button: b, from: from, to: to})
}

func (i *Inputs) SetSwitch(on bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.switchOn = on
}

func (i *Inputs) ReadButton(b model.Button) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	offset := i.clock.Now().Sub(i.start)
	for _, h := range i.holds {
		if h.button == b && offset >= h.from && offset < h.to {
			return true
		}
	}
	return false
}

func (i *Inputs) ReadSwitch() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.switchOn
}

type Audio struct {
	mu      sync.Mutex
	playing bool
	plays   int
	stops   int
	looped  bool
}

func (a *Audio) Play(loop bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = true
	a.looped = loop
	a.plays++
}

func (a *Audio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
	a.stops++
}

func (a *Audio) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

func (a *Audio) Looped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.looped
}

// Calls returns the number of Play and Stop calls.
func (a *Audio) Calls() (plays, stops int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.plays, a.stops
}
