package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/db"
	"github.com/thatsimonsguy/fireplace-controller/internal/api"
	"github.com/thatsimonsguy/fireplace-controller/internal/audio"
	"github.com/thatsimonsguy/fireplace-controller/internal/clock"
	"github.com/thatsimonsguy/fireplace-controller/internal/config"
	"github.com/thatsimonsguy/fireplace-controller/internal/datadog"
	"github.com/thatsimonsguy/fireplace-controller/internal/env"
	"github.com/thatsimonsguy/fireplace-controller/internal/gpio"
	"github.com/thatsimonsguy/fireplace-controller/internal/ledstrip"
	"github.com/thatsimonsguy/fireplace-controller/internal/logging"
	"github.com/thatsimonsguy/fireplace-controller/internal/notifications"
	"github.com/thatsimonsguy/fireplace-controller/internal/scheduler"
	"github.com/thatsimonsguy/fireplace-controller/internal/sim"
	"github.com/thatsimonsguy/fireplace-controller/system/shutdown"
)

func main() {
	cfg := config.Load(os.Args[1:])
	env.Cfg = &cfg
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Bool("simulate", cfg.Simulate).
		Int("pixels", cfg.PixelCount).
		Str("db", cfg.DBPath).
		Msg("Starting fireplace controller")

	datadog.InitMetrics()
	defer datadog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := scheduler.Deps{Clock: clock.Real{}}

	if cfg.Simulate {
		screen, err := tcell.NewScreen()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create simulator screen")
		}
		if err := screen.Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize simulator screen")
		}
		defer screen.Fini()
		screen.Clear()
		screen.HideCursor()

		s := sim.New(screen, deps.Clock, sim.DefaultHoldWindow)
		go s.Listen(screen.PollEvent, stop)
		deps.Strip, deps.Inputs, deps.Audio = s, s, s
		log.Warn().Msg("SIMULATOR MODE - no GPIO, LED or audio hardware is used")
	} else {
		if err := gpio.ValidateInputPins(cfg.GPIO); err != nil {
			log.Fatal().Err(err).Msg("Refusing to start with misconfigured input pins")
		}

		strip, device, err := ledstrip.Open(cfg.LEDDevice, cfg.Brightness)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open LED strip")
		}
		defer device.Close()

		gpio.EnableSpeaker(cfg.GPIO)
		defer gpio.DisableSpeaker(cfg.GPIO)

		deps.Strip = strip
		deps.Inputs = gpio.NewInputs(cfg.GPIO)
		deps.Audio = audio.NewPlayer(cfg.AudioPlayer, cfg.SoundFile)
	}
	shutdown.Register(deps.Strip, deps.Audio, cfg.PixelCount)

	dbConn := openJournal(cfg.DBPath)
	if dbConn != nil {
		defer dbConn.Close()
		journal := db.NewJournal(dbConn, db.DefaultJournalBuffer)
		defer journal.Close()
		deps.Recorder = journal
	}

	// a nil *Client must not become a non-nil Notifier
	if n := notifications.Init(); n != nil {
		deps.Notifier = n
	}

	sched := scheduler.New(schedulerConfig(&cfg), deps)

	if cfg.APIPort > 0 {
		server := api.NewServer(sched, dbConn)
		go func() {
			if err := server.Start(ctx, cfg.APIPort); err != nil {
				log.Error().Err(err).Msg("Status API server stopped")
			}
		}()
	}

	go reportMetrics(ctx, sched, cfg.MetricsInterval())

	if err := sched.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduler exited with error")
	}
	log.Info().Msg("Fireplace controller stopped")
}

func openJournal(path string) *sql.DB {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to create journal directory, running without journal")
		return nil
	}
	dbConn, err := db.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to open journal, running without journal")
		return nil
	}
	return dbConn
}
