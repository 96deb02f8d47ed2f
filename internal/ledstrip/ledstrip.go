package ledstrip

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

const bytesPerLED = 3

// Strip writes frames to a WS2812 driver device in Green-Red-Blue order.
type Strip struct {
	mu         sync.Mutex
	w          io.Writer
	brightness float64
	buf        []byte
}

func New(w io.Writer, brightness float64) *Strip {
	return &Strip{w: w, brightness: math.Max(0, math.Min(1, brightness))}
}

// Open opens the LED device for writing. The caller closes the returned file.
func Open(path string, brightness float64) (*Strip, *os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open LED device %s: %w", path, err)
	}
	log.Info().Str("device", path).Float64("brightness", brightness).Msg("LED strip opened")
	return New(f, brightness), f, nil
}

// Gamma approximates the LED response curve.
func Gamma(v uint8) uint8 {
	return uint8(uint16(v) * uint16(v) / 255)
}

// Encode converts a frame to device bytes after brightness and gamma correction.
func Encode(dst []byte, frame []model.Color, brightness float64) []byte {
	dst = dst[:0]
	for _, c := range frame {
		c = c.Scale(brightness)
		dst = append(dst, Gamma(c.G), Gamma(c.R), Gamma(c.B))
	}
	return dst
}

func (s *Strip) Show(frame []model.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = Encode(s.buf, frame, s.brightness)
	n, err := s.w.Write(s.buf)
	if err != nil {
		log.Error().Err(err).Int("pixels", len(frame)).Msg("Failed to write LED frame")
		return
	}
	if n != len(s.buf) {
		log.Warn().Int("written", n).Int("expected", len(s.buf)).Msg("Short LED frame write")
	}
}
