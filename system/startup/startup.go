package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/thatsimonsguy/fireplace-controller/internal/env"
)

// WriteStartupScript writes the pinctrl script that puts every pin in its
// idle state at boot: inputs pulled, speaker amplifier on.
func WriteStartupScript() error {
	gpio := env.Cfg.GPIO
	lines := []string{"#!/bin/bash", "", "# Fireplace GPIO pin configuration at boot", ""}

	write := func(label string, pin int, opts string) {
		lines = append(lines, fmt.Sprintf("# %s", label))
		lines = append(lines, fmt.Sprintf("pinctrl set %d %s", pin, opts))
		lines = append(lines, "")
	}

	write("button_a", *gpio.ButtonA, "ip pd")
	write("button_b", *gpio.ButtonB, "ip pd")
	write("sound_switch", *gpio.SoundSwitch, "ip pu")
	write("speaker_enable", *gpio.SpeakerEnable, "op pn dh")

	contents := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(env.Cfg.BootScriptFilePath, []byte(contents), 0755)
}

func InstallStartupService() error {
	unitContents := fmt.Sprintf(`[Unit]
Description=Configure fireplace GPIO pins at boot
After=network.target

[Service]
Type=oneshot
Environment=PATH=/usr/local/bin:/usr/bin:/bin
ExecStart=%s
RemainAfterExit=true

[Install]
WantedBy=multi-user.target
`, env.Cfg.BootScriptFilePath)

	return os.WriteFile(env.Cfg.OSServicePath, []byte(unitContents), 0644)
}

var runScript = func(path string) error {
	cmd := exec.Command("/bin/bash", path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func RunStartupScript() error {
	return runScript(env.Cfg.BootScriptFilePath)
}

// InstallFireplaceService writes the unit for the controller itself. The
// controller starts after the pin service so inputs are configured first.
func InstallFireplaceService(binary, workdir, user string) error {
	gpioUnitName := filepath.Base(env.Cfg.OSServicePath)

	unit := fmt.Sprintf(`[Unit]
Description=Fireplace controller
After=%s
Requires=%s

[Service]
Type=simple
User=%s
WorkingDirectory=%s
ExecStart=%s -config-file %s
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, gpioUnitName, gpioUnitName, user, workdir, binary, env.Cfg.ConfigFile)

	return os.WriteFile(env.Cfg.MainServicePath, []byte(unit), 0644)
}
