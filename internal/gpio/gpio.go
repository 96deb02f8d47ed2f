package gpio

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/config"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
	"github.com/thatsimonsguy/fireplace-controller/internal/pinctrl"
	"github.com/thatsimonsguy/fireplace-controller/system/shutdown"
)

// Inputs implements peripheral.Inputs on the Raspberry Pi pins.
// Buttons are wired with pull-downs and the slide switch with a pull-up, so
// every input reads high when active.
type Inputs struct {
	buttons map[model.Button]model.GPIOPin
	sound   model.GPIOPin
}

func NewInputs(cfg config.GPIO) *Inputs {
	return &Inputs{
		buttons: map[model.Button]model.GPIOPin{
			model.ButtonA: {Number: *cfg.ButtonA, ActiveHigh: true},
			model.ButtonB: {Number: *cfg.ButtonB, ActiveHigh: true},
		},
		sound: model.GPIOPin{Number: *cfg.SoundSwitch, ActiveHigh: true},
	}
}

func (in *Inputs) ReadButton(b model.Button) bool {
	pin, ok := in.buttons[b]
	if !ok {
		return false
	}
	return CurrentlyActive(pin)
}

func (in *Inputs) ReadSwitch() bool {
	return CurrentlyActive(in.sound)
}

// Read returns the raw level of pin.
var Read = func(pin model.GPIOPin) (bool, error) {
	return pinctrl.ReadLevel(pin.Number)
}

var CurrentlyActive = func(pin model.GPIOPin) bool {
	level, err := Read(pin)
	if err != nil {
		log.Error().Err(err).Int("pin", pin.Number).Msg("Failed to read pin level")
		return false
	}
	return pin.ActiveHigh == level
}

var Activate = func(pin model.GPIOPin) {
	drive := "dl"
	if pin.ActiveHigh {
		drive = "dh"
	}
	if err := pinctrl.SetPin(pin.Number, "op", "pn", drive); err != nil {
		shutdown.ShutdownWithError(err, fmt.Sprintf("Failed to activate pin %d", pin.Number))
	}
}

var Deactivate = func(pin model.GPIOPin) {
	drive := "dh"
	if pin.ActiveHigh {
		drive = "dl"
	}
	if err := pinctrl.SetPin(pin.Number, "op", "pn", drive); err != nil {
		shutdown.ShutdownWithError(err, fmt.Sprintf("Failed to deactivate pin %d", pin.Number))
	}
}

func EnableSpeaker(cfg config.GPIO) {
	Activate(model.GPIOPin{Number: *cfg.SpeakerEnable, ActiveHigh: true})
	log.Info().Int("pin", *cfg.SpeakerEnable).Msg("Speaker amplifier enabled")
}

func DisableSpeaker(cfg config.GPIO) {
	Deactivate(model.GPIOPin{Number: *cfg.SpeakerEnable, ActiveHigh: true})
	log.Info().Int("pin", *cfg.SpeakerEnable).Msg("Speaker amplifier disabled")
}

// ValidateInputPins checks that the boot script configured every input pin.
func ValidateInputPins(cfg config.GPIO) error {
	checks := []struct {
		name string
		pin  int
		pull string
	}{
		{"button_a", *cfg.ButtonA, "pd"},
		{"button_b", *cfg.ButtonB, "pd"},
		{"sound_switch", *cfg.SoundSwitch, "pu"},
	}

	states, err := readAllPins()
	if err != nil {
		return err
	}

	for _, check := range checks {
		state, ok := states[check.pin]
		if !ok {
			return fmt.Errorf("pin %d (%s) not reported by pinctrl", check.pin, check.name)
		}
		if state.Mode != "ip" || state.Pull != check.pull {
			return fmt.Errorf("pin %d (%s) is %s/%s at startup (expected ip/%s)", check.pin, check.name, state.Mode, state.Pull, check.pull)
		}
	}
	return nil
}

var readAllPins = pinctrl.ReadAllPins
