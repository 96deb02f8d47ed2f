package sleepadjust

import (
	"time"

	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

// Quantize rounds d up to the next whole increment.
func Quantize(d, increment time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return (d + increment - 1) / increment * increment
}

// LitSegments is ceil(remaining/increment), capped at segments.
func LitSegments(remaining, increment time.Duration, segments int) int {
	n := int(Quantize(remaining, increment) / increment)
	if n > segments {
		return segments
	}
	return n
}

// Gauge renders the remaining time over the first segments pixels. The
// highest index holds the first increment, so the gauge drains from index 0.
// Pixels beyond the gauge are dark.
func Gauge(remaining, increment time.Duration, segments, pixels int, c model.Color) []model.Color {
	frame := make([]model.Color, pixels)
	for p := 0; p < segments && p < pixels; p++ {
		if time.Duration(segments-1-p)*increment < remaining {
			frame[p] = c
		}
	}
	return frame
}
