package startup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/fireplace-controller/internal/config"
	"github.com/thatsimonsguy/fireplace-controller/internal/env"
)

func pin(n int) *int { return &n }

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := env.Cfg
	t.Cleanup(func() { env.Cfg = orig })

	env.Cfg = &config.Config{
		ConfigFile:         "/etc/fireplace/config.json",
		BootScriptFilePath: filepath.Join(dir, "fireplace-pins.sh"),
		OSServicePath:      filepath.Join(dir, "fireplace-pins.service"),
		MainServicePath:    filepath.Join(dir, "fireplace-controller.service"),
		GPIO: config.GPIO{
			ButtonA:       pin(17),
			ButtonB:       pin(27),
			SoundSwitch:   pin(22),
			SpeakerEnable: pin(23),
		},
	}
	return dir
}

func TestWriteStartupScript(t *testing.T) {
	setupEnv(t)
	require.NoError(t, WriteStartupScript())

	data, err := os.ReadFile(env.Cfg.BootScriptFilePath)
	require.NoError(t, err)
	script := string(data)

	assert.Contains(t, script, "#!/bin/bash")
	assert.Contains(t, script, "pinctrl set 17 ip pd\n")
	assert.Contains(t, script, "pinctrl set 27 ip pd\n")
	assert.Contains(t, script, "pinctrl set 22 ip pu\n")
	assert.Contains(t, script, "pinctrl set 23 op pn dh\n")

	info, err := os.Stat(env.Cfg.BootScriptFilePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestInstallServices(t *testing.T) {
	setupEnv(t)
	require.NoError(t, InstallStartupService())
	require.NoError(t, InstallFireplaceService("/usr/local/bin/fireplace", "/home/pi/fireplace", "pi"))

	pins, err := os.ReadFile(env.Cfg.OSServicePath)
	require.NoError(t, err)
	assert.Contains(t, string(pins), "ExecStart="+env.Cfg.BootScriptFilePath)

	main, err := os.ReadFile(env.Cfg.MainServicePath)
	require.NoError(t, err)
	assert.Contains(t, string(main), "Requires=fireplace-pins.service")
	assert.Contains(t, string(main), "ExecStart=/usr/local/bin/fireplace -config-file /etc/fireplace/config.json")
	assert.Contains(t, string(main), "User=pi")
}

func TestRunStartupScript(t *testing.T) {
	setupEnv(t)
	orig := runScript
	defer func() { runScript = orig }()

	var ran string
	runScript = func(path string) error { ran = path; return nil }

	require.NoError(t, RunStartupScript())
	assert.Equal(t, env.Cfg.BootScriptFilePath, ran)
}
