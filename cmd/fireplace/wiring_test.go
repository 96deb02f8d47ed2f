package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/thatsimonsguy/fireplace-controller/internal/config"
	"github.com/thatsimonsguy/fireplace-controller/internal/flame"
	"github.com/thatsimonsguy/fireplace-controller/internal/model"
	"github.com/thatsimonsguy/fireplace-controller/internal/scheduler"
	"github.com/thatsimonsguy/fireplace-controller/internal/sleepadjust"
)

func loadConfig(t *testing.T, contents string) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	}
	return config.Load([]string{"-simulate", "-config-file", path})
}

func TestSchedulerConfigDefaultsMatchScheduler(t *testing.T) {
	cfg := loadConfig(t, "")

	assert.Equal(t, scheduler.DefaultConfig(), schedulerConfig(&cfg))
}

func TestSchedulerConfigOverrides(t *testing.T) {
	cfg := loadConfig(t, `{
		"pixel_count": 30,
		"sleep_increment_seconds": 600,
		"sleep_max_increments": 6,
		"initial_sleep_increments": 3,
		"fire_color": {"r": 200, "g": 80, "b": 0},
		"relight_intensity": {"min": 150, "max": 250}
	}`)

	sc := schedulerConfig(&cfg)
	assert.Equal(t, 30*time.Minute, sc.InitialSleep)
	assert.Equal(t, 10*time.Minute, sc.Adjust.Increment)
	assert.Equal(t, 6, sc.Adjust.Segments)
	assert.Equal(t, 30, sc.Adjust.PixelCount)
	assert.Equal(t, time.Hour, sc.Adjust.Max())
	assert.Equal(t, model.Color{R: 200, G: 80}, sc.FireColor)
	assert.Equal(t, flame.Range{Min: 150, Max: 250}, sc.Flame.RelightRange)
	assert.Equal(t, sleepadjust.DefaultEditColor, sc.Adjust.EditColor)
}

type countingStatus struct {
	calls atomic.Int32
}

func (c *countingStatus) Status() scheduler.Status {
	c.calls.Add(1)
	return scheduler.Status{FireOn: true}
}

func TestReportMetricsStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	src := &countingStatus{}
	done := make(chan struct{})
	go func() {
		reportMetrics(ctx, src, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return src.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestBoolGauge(t *testing.T) {
	assert.Equal(t, 1.0, boolGauge(true))
	assert.Equal(t, 0.0, boolGauge(false))
}
