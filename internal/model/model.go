package model

import (
	"math"
	"time"
)

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var Black = Color{}

// Scale multiplies every channel by factor, rounding half to even and clamping to [0,255].
func (c Color) Scale(factor float64) Color {
	return Color{
		R: scaleChannel(c.R, factor),
		G: scaleChannel(c.G, factor),
		B: scaleChannel(c.B, factor),
	}
}

func scaleChannel(v uint8, factor float64) uint8 {
	x := math.RoundToEven(float64(v) * factor)
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// Fill returns a frame of n pixels all set to c.
func Fill(c Color, n int) []Color {
	frame := make([]Color, n)
	for i := range frame {
		frame[i] = c
	}
	return frame
}

type Button string

const (
	ButtonA Button = "a"
	ButtonB Button = "b"
)

type GPIOPin struct {
	Number     int
	ActiveHigh bool
}

type EventKind string

const (
	EventSleepSet     EventKind = "sleep_set"
	EventFireOut      EventKind = "fire_out"
	EventAudioStarted EventKind = "audio_started"
	EventAudioStopped EventKind = "audio_stopped"
)

type Event struct {
	Kind          EventKind     `json:"kind"`
	SleepDuration time.Duration `json:"sleep_duration"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// State holds the mode flags shared by the scheduler and the sleep-adjust
// controller. Only the phase currently running on the tick loop writes it.
type State struct {
	// Sleeping is true once a countdown has been set; false means perpetual burn.
	Sleeping bool
	// FireOn is false after the fire has faded out.
	FireOn bool
	// AudioPlaying mirrors the actual playback state.
	AudioPlaying bool
	// SleepDuration is the value being edited; the sleep timer holds it quantized.
	SleepDuration time.Duration
}
