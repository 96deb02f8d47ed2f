package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorScale(t *testing.T) {
	fire := Color{R: 255, G: 150, B: 0}

	tests := []struct {
		name     string
		factor   float64
		expected Color
	}{
		{"full", 1, fire},
		{"off", 0, Black},
		{"half rounds to even", 0.5, Color{R: 128, G: 75, B: 0}},
		{"fade step", 0.6, Color{R: 153, G: 90, B: 0}},
		{"clamps high", 2, Color{R: 255, G: 255, B: 0}},
		{"clamps low", -1, Black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fire.Scale(tt.factor))
		})
	}
}

func TestColorScaleStaysInRange(t *testing.T) {
	for v := 0; v <= 255; v += 5 {
		c := Color{R: uint8(v), G: uint8(255 - v), B: 255}
		for f := 0.0; f <= 1.0; f += 0.05 {
			s := c.Scale(f)
			assert.LessOrEqual(t, s.R, c.R)
			assert.LessOrEqual(t, s.G, c.G)
			assert.LessOrEqual(t, s.B, c.B)
		}
	}
}

func TestFill(t *testing.T) {
	frame := Fill(Color{B: 100}, 3)
	assert.Equal(t, []Color{{B: 100}, {B: 100}, {B: 100}}, frame)
	assert.Empty(t, Fill(Black, 0))
}
