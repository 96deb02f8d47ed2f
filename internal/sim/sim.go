// Package sim is a terminal stand-in for the fireplace hardware. It draws the
// LED strip with tcell and maps keys to the buttons and sound switch.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/thatsimonsguy/fireplace-controller/internal/clock"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

// DefaultHoldWindow covers the gap between terminal key repeats, so holding
// a key reads as a held button.
const DefaultHoldWindow = 600 * time.Millisecond

const (
	stripRow  = 1
	statusRow = 3
	helpRow   = 4
	cellWidth = 3
)

const help = "[a] longer  [b] shorter  [s] sound  [q] quit"

// Screen is the subset of tcell.Screen the simulator draws on.
type Screen interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
}

type Simulator struct {
	screen     Screen
	clock      clock.Clock
	holdWindow time.Duration

	mu       sync.Mutex
	frame    []model.Color
	heldTill map[model.Button]time.Time
	switchOn bool
	playing  bool
	looped   bool
}

func New(screen Screen, c clock.Clock, holdWindow time.Duration) *Simulator {
	if holdWindow <= 0 {
		holdWindow = DefaultHoldWindow
	}
	return &Simulator{
		screen:     screen,
		clock:      c,
		holdWindow: holdWindow,
		heldTill:   map[model.Button]time.Time{},
	}
}

// Listen dispatches terminal events until poll returns nil, calling quit when
// the user asks to leave.
func (s *Simulator) Listen(poll func() tcell.Event, quit func()) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if s.handleKey(key.Key(), key.Rune()) {
			quit()
		}
	}
}

// handleKey applies one key press and reports whether it requests quit.
func (s *Simulator) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	s.mu.Lock()
	switch r {
	case 'a', 'A':
		s.heldTill[model.ButtonA] = s.clock.Now().Add(s.holdWindow)
	case 'b', 'B':
		s.heldTill[model.ButtonB] = s.clock.Now().Add(s.holdWindow)
	case 's', 'S':
		s.switchOn = !s.switchOn
	case 'q', 'Q':
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()

	s.draw()
	return false
}

func (s *Simulator) ReadButton(b model.Button) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	till, ok := s.heldTill[b]
	return ok && s.clock.Now().Before(till)
}

func (s *Simulator) ReadSwitch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switchOn
}

func (s *Simulator) Show(frame []model.Color) {
	s.mu.Lock()
	s.frame = append(s.frame[:0], frame...)
	s.mu.Unlock()
	s.draw()
}

func (s *Simulator) Play(loop bool) {
	s.mu.Lock()
	s.playing, s.looped = true, loop
	s.mu.Unlock()
	s.draw()
}

func (s *Simulator) Stop() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
	s.draw()
}

func (s *Simulator) statusLine() string {
	sound := "off"
	if s.switchOn {
		sound = "on"
	}
	audio := "silent"
	if s.playing {
		audio = "playing"
		if s.looped {
			audio = "playing (loop)"
		}
	}
	return fmt.Sprintf("sound switch: %-3s  audio: %-14s", sound, audio)
}

func (s *Simulator) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.frame {
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		for dx := 0; dx < cellWidth-1; dx++ {
			s.screen.SetContent(i*cellWidth+dx, stripRow, '█', nil, style)
		}
		s.screen.SetContent(i*cellWidth+cellWidth-1, stripRow, ' ', nil, tcell.StyleDefault)
	}
	drawText(s.screen, statusRow, s.statusLine())
	drawText(s.screen, helpRow, help)
	s.screen.Show()
}

func drawText(screen Screen, row int, text string) {
	x := 0
	for _, r := range text {
		screen.SetContent(x, row, r, nil, tcell.StyleDefault)
		x++
	}
}
