package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/rs/zerolog"

	"github.com/thatsimonsguy/fireplace-controller/db"
	"github.com/thatsimonsguy/fireplace-controller/internal/config"
	"github.com/thatsimonsguy/fireplace-controller/internal/env"
	"github.com/thatsimonsguy/fireplace-controller/internal/logging"
	"github.com/thatsimonsguy/fireplace-controller/internal/pinctrl"
	"github.com/thatsimonsguy/fireplace-controller/system/startup"
)

func main() {
	logging.Init(zerolog.WarnLevel, "")

	if err := rootCommand().ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *ffcli.Command {
	eventsFlagSet := flag.NewFlagSet("fireplace-debug events", flag.ExitOnError)
	eventsDB := eventsFlagSet.String("db", "data/fireplace.db", "Path to the SQLite event journal")
	eventsLimit := eventsFlagSet.Int("limit", 20, "Number of events to show")

	pruneFlagSet := flag.NewFlagSet("fireplace-debug prune", flag.ExitOnError)
	pruneDB := pruneFlagSet.String("db", "data/fireplace.db", "Path to the SQLite event journal")
	pruneAge := pruneFlagSet.Duration("older-than", 30*24*time.Hour, "Delete events older than this")

	scriptFlagSet := flag.NewFlagSet("fireplace-debug write-boot-script", flag.ExitOnError)
	scriptConfig := scriptFlagSet.String("config-file", "config.json", "Path to controller config file")
	scriptRun := scriptFlagSet.Bool("run", false, "Run the script after writing it")

	serviceFlagSet := flag.NewFlagSet("fireplace-debug install-service", flag.ExitOnError)
	serviceConfig := serviceFlagSet.String("config-file", "config.json", "Path to controller config file")
	serviceBinary := serviceFlagSet.String("binary", "/usr/local/bin/fireplace", "Path to the controller binary")
	serviceWorkdir := serviceFlagSet.String("workdir", "/home/pi/fireplace-controller", "Working directory for the service")
	serviceUser := serviceFlagSet.String("user", "pi", "User the service runs as")

	pinsFlagSet := flag.NewFlagSet("fireplace-debug pins", flag.ExitOnError)
	pinsConfig := pinsFlagSet.String("config-file", "config.json", "Path to controller config file")

	eventsCmd := &ffcli.Command{
		Name:       "events",
		ShortUsage: "fireplace-debug events [flags]",
		ShortHelp:  "List recent events from the journal",
		FlagSet:    eventsFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			return db.PrintEventsCLI(*eventsDB, *eventsLimit, os.Stdout)
		},
	}

	pruneCmd := &ffcli.Command{
		Name:       "prune",
		ShortUsage: "fireplace-debug prune [flags]",
		ShortHelp:  "Delete old events from the journal",
		FlagSet:    pruneFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			n, err := db.PruneEventsCLI(*pruneDB, *pruneAge)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d events\n", n)
			return nil
		},
	}

	scriptCmd := &ffcli.Command{
		Name:       "write-boot-script",
		ShortUsage: "fireplace-debug write-boot-script [flags]",
		ShortHelp:  "Write the pinctrl boot script and its systemd unit",
		FlagSet:    scriptFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			loadEnv(*scriptConfig)
			if err := startup.WriteStartupScript(); err != nil {
				return fmt.Errorf("write boot script: %w", err)
			}
			if err := startup.InstallStartupService(); err != nil {
				return fmt.Errorf("install pin service: %w", err)
			}
			fmt.Printf("Wrote %s and %s\n", env.Cfg.BootScriptFilePath, env.Cfg.OSServicePath)
			if *scriptRun {
				return startup.RunStartupScript()
			}
			return nil
		},
	}

	serviceCmd := &ffcli.Command{
		Name:       "install-service",
		ShortUsage: "fireplace-debug install-service [flags]",
		ShortHelp:  "Write the systemd unit for the controller",
		FlagSet:    serviceFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			loadEnv(*serviceConfig)
			if err := startup.InstallFireplaceService(*serviceBinary, *serviceWorkdir, *serviceUser); err != nil {
				return fmt.Errorf("install controller service: %w", err)
			}
			fmt.Printf("Wrote %s\n", env.Cfg.MainServicePath)
			return nil
		},
	}

	pinsCmd := &ffcli.Command{
		Name:       "pins",
		ShortUsage: "fireplace-debug pins [flags]",
		ShortHelp:  "Show the pinctrl state of the configured pins",
		FlagSet:    pinsFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			loadEnv(*pinsConfig)
			return printPins(env.Cfg.GPIO)
		},
	}

	return &ffcli.Command{
		ShortUsage:  "fireplace-debug <subcommand> [flags]",
		ShortHelp:   "Maintenance tools for the fireplace controller",
		Subcommands: []*ffcli.Command{eventsCmd, pruneCmd, scriptCmd, serviceCmd, pinsCmd},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}
}

func loadEnv(configFile string) {
	cfg := config.Load([]string{"-config-file", configFile})
	env.Cfg = &cfg
}

func printPins(gpio config.GPIO) error {
	states, err := pinctrl.ReadAllPins()
	if err != nil {
		return err
	}

	named := map[int]string{
		*gpio.ButtonA:       "button_a",
		*gpio.ButtonB:       "button_b",
		*gpio.SoundSwitch:   "sound_switch",
		*gpio.SpeakerEnable: "speaker_enable",
	}
	pins := make([]int, 0, len(named))
	for pin := range named {
		pins = append(pins, pin)
	}
	sort.Ints(pins)

	for _, pin := range pins {
		ps, ok := states[pin]
		if !ok {
			fmt.Printf("%-15s GPIO%-3d not reported\n", named[pin], pin)
			continue
		}
		fmt.Printf("%-15s GPIO%-3d mode=%s pull=%s level=%s\n", named[pin], pin, ps.Mode, ps.Pull, ps.Level)
	}
	return nil
}
