package main

import (
	"context"
	"time"

	"github.com/thatsimonsguy/fireplace-controller/internal/config"
	"github.com/thatsimonsguy/fireplace-controller/internal/datadog"
	"github.com/thatsimonsguy/fireplace-controller/internal/flame"
	"github.com/thatsimonsguy/fireplace-controller/internal/scheduler"
	"github.com/thatsimonsguy/fireplace-controller/internal/sleepadjust"
)

func schedulerConfig(cfg *config.Config) scheduler.Config {
	return scheduler.Config{
		FireColor:          cfg.FireColor,
		FrameInterval:      cfg.FrameInterval(),
		FadeSteps:          cfg.FadeSteps,
		FadeFactor:         cfg.FadeFactor,
		FadeStepDelay:      cfg.FadeStepDelay(),
		InitialSleep:       cfg.InitialSleep(),
		InteractionTimeout: cfg.InteractionTimeout(),
		Adjust: sleepadjust.Config{
			Increment:    cfg.SleepIncrement(),
			Segments:     cfg.SleepMaxIncrements,
			KeyRepeat:    cfg.KeyRepeat(),
			PollInterval: cfg.PollInterval(),
			EditColor:    cfg.EditColor,
			PixelCount:   cfg.PixelCount,
		},
		Flame: flame.Config{
			DecayStep:    cfg.FlameDecayStep,
			StartupRange: flame.Range{Min: cfg.StartupIntensity.Min, Max: cfg.StartupIntensity.Max},
			RelightRange: flame.Range{Min: cfg.RelightIntensity.Min, Max: cfg.RelightIntensity.Max},
		},
	}
}

type statusSource interface {
	Status() scheduler.Status
}

func reportMetrics(ctx context.Context, src statusSource, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emitStatus(src.Status())
		}
	}
}

func emitStatus(st scheduler.Status) {
	datadog.Gauge("sleep.remaining_seconds", st.SleepRemaining.Seconds())
	datadog.Gauge("sleep.lit_segments", float64(st.LitSegments))
	datadog.Gauge("fire.on", boolGauge(st.FireOn))
	datadog.Gauge("audio.playing", boolGauge(st.AudioPlaying))
	datadog.Gauge("sleep.active", boolGauge(st.Sleeping))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
