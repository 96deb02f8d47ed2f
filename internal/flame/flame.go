package flame

import (
	"math/rand"

	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

const (
	MaxIntensity = 255

	DefaultDecayStep = 4
)

// Range is an inclusive intensity range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var (
	// DefaultStartupRange spans low values so the first frames look varied.
	DefaultStartupRange = Range{Min: 5, Max: 255}
	// DefaultRelightRange keeps relit pixels bright so none stay dark for long.
	DefaultRelightRange = Range{Min: 100, Max: 255}
)

func (r Range) clamp() Range {
	r.Min = clampIntensity(r.Min)
	r.Max = clampIntensity(r.Max)
	if r.Max < r.Min {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

type Random interface {
	IntInRange(lo, hi int) int
}

type mathRandom struct {
	r *rand.Rand
}

// NewRandom returns a Random backed by math/rand.
func NewRandom(seed int64) Random {
	return &mathRandom{r: rand.New(rand.NewSource(seed))}
}

func (m *mathRandom) IntInRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + m.r.Intn(hi-lo+1)
}

type Config struct {
	DecayStep    int
	StartupRange Range
	RelightRange Range
}

func DefaultConfig() Config {
	return Config{
		DecayStep:    DefaultDecayStep,
		StartupRange: DefaultStartupRange,
		RelightRange: DefaultRelightRange,
	}
}

type Pixel struct {
	Base      model.Color
	Intensity int
}

// Animator produces one frame of flickering flame per Tick.
type Animator struct {
	cfg    Config
	rnd    Random
	pixels []Pixel
}

func New(cfg Config, colors []model.Color, rnd Random) *Animator {
	if cfg.DecayStep <= 0 {
		cfg.DecayStep = DefaultDecayStep
	}
	cfg.StartupRange = cfg.StartupRange.clamp()
	cfg.RelightRange = cfg.RelightRange.clamp()

	a := &Animator{
		cfg:    cfg,
		rnd:    rnd,
		pixels: make([]Pixel, len(colors)),
	}
	for i, c := range colors {
		a.pixels[i] = Pixel{Base: c, Intensity: a.draw(cfg.StartupRange)}
	}
	return a
}

// Tick decays every pixel, relights the ones that burned out and returns the frame.
func (a *Animator) Tick() []model.Color {
	frame := make([]model.Color, len(a.pixels))
	for i := range a.pixels {
		p := &a.pixels[i]
		p.Intensity -= a.cfg.DecayStep
		if p.Intensity <= 0 {
			p.Intensity = a.draw(a.cfg.RelightRange)
		}
		frame[i] = p.Base.Scale(float64(p.Intensity) / MaxIntensity)
	}
	return frame
}

// Pixels returns a copy of the current flame state.
func (a *Animator) Pixels() []Pixel {
	out := make([]Pixel, len(a.pixels))
	copy(out, a.pixels)
	return out
}

func (a *Animator) draw(r Range) int {
	return clampIntensity(a.rnd.IntInRange(r.Min, r.Max))
}

func clampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}
