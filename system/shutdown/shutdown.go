package shutdown

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/env"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
	"github.com/thatsimonsguy/fireplace-controller/internal/peripheral"
	"github.com/thatsimonsguy/fireplace-controller/internal/pinctrl"
)

var ExitFunc = os.Exit

var (
	mu     sync.Mutex
	strip  peripheral.Strip
	audio  peripheral.Audio
	pixels int
)

// Register sets the outputs that Shutdown darkens and silences.
func Register(s peripheral.Strip, a peripheral.Audio, pixelCount int) {
	mu.Lock()
	defer mu.Unlock()
	strip, audio, pixels = s, a, pixelCount
}

func Shutdown() {
	exit(0)
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	exit(1)
}

func exit(code int) {
	mu.Lock()
	s, a, n := strip, audio, pixels
	mu.Unlock()

	if s != nil {
		s.Show(model.Fill(model.Black, n))
		log.Info().Msg("LED strip blanked")
	}
	if a != nil {
		a.Stop()
	}

	if env.Cfg != nil && !env.Cfg.Simulate && env.Cfg.GPIO.SpeakerEnable != nil {
		if err := pinctrl.SetPin(*env.Cfg.GPIO.SpeakerEnable, "op", "pn", "dl"); err != nil {
			log.Warn().Err(err).Msg("Failed to disable speaker amplifier")
		} else {
			log.Info().Msg("Speaker amplifier disabled")
		}
	}

	ExitFunc(code)
}
