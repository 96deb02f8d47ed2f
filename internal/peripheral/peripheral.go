// Package peripheral declares the hardware capabilities the control loop
// depends on. Implementations handle and log their own failures; none of these
// calls report errors back to the caller.
package peripheral

import "github.com/thatsimonsguy/fireplace-controller/internal/model"

// Strip pushes a full frame to the LEDs. The frame takes effect as a whole.
type Strip interface {
	Show(frame []model.Color)
}

// Inputs reads instantaneous digital levels.
type Inputs interface {
	ReadButton(b model.Button) bool
	ReadSwitch() bool
}

// Audio controls playback of the fire sample. Fire and forget.
type Audio interface {
	Play(loop bool)
	Stop()
}
