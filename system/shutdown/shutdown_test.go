package shutdown

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thatsimonsguy/fireplace-controller/internal/config"
	"github.com/thatsimonsguy/fireplace-controller/internal/env"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
	"github.com/thatsimonsguy/fireplace-controller/internal/peripheral/peripheraltest"
)

func TestShutdownBlanksAndSilences(t *testing.T) {
	origCfg := env.Cfg
	env.Cfg = &config.Config{Simulate: true}
	defer func() { env.Cfg = origCfg }()

	var exitCode = -1
	ExitFunc = func(code int) { exitCode = code }
	defer func() { ExitFunc = os.Exit }()

	strip := &peripheraltest.Strip{}
	audio := &peripheraltest.Audio{}
	audio.Play(true)
	Register(strip, audio, 10)
	defer Register(nil, nil, 0)

	Shutdown()

	assert.Equal(t, 0, exitCode)
	assert.Equal(t, model.Fill(model.Black, 10), strip.Last())
	assert.False(t, audio.Playing())
}

func TestShutdownWithErrorExitsNonZero(t *testing.T) {
	origCfg := env.Cfg
	env.Cfg = nil
	defer func() { env.Cfg = origCfg }()

	var exitCode = -1
	ExitFunc = func(code int) { exitCode = code }
	defer func() { ExitFunc = os.Exit }()

	assert.NotPanics(t, func() { ShutdownWithError(errors.New("pin read failed"), "Failed to read pin") })
	assert.Equal(t, 1, exitCode)
}
