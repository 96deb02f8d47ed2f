package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/rs/zerolog"

	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

const (
	DefaultPixelCount               = 10
	DefaultBrightness               = 0.5
	DefaultLEDDevice                = "/dev/spidev0.0"
	DefaultSoundFile                = "resources/sound/fireplace.wav"
	DefaultAudioPlayer              = "aplay"
	DefaultSleepIncrementSeconds    = 12 * 60
	DefaultSleepMaxIncrements       = 10
	DefaultInitialSleepIncrements   = 1
	DefaultKeyRepeatMillis          = 400
	DefaultInteractionTimeoutMillis = 3000
	DefaultFrameIntervalMillis      = 20
	DefaultPollIntervalMillis       = 5
	DefaultFadeSteps                = 10
	DefaultFadeFactor               = 0.6
	DefaultFadeStepMillis           = 30
	DefaultFlameDecayStep           = 4
	DefaultMetricsIntervalSeconds   = 10
	DefaultDDAgentAddr              = "127.0.0.1:8125"
	DefaultDDNamespace              = "fireplace."
)

var (
	DefaultFireColor = model.Color{R: 255, G: 150, B: 0}
	DefaultEditColor = model.Color{R: 0, G: 0, B: 100}

	DefaultStartupIntensity = IntensityRange{Min: 5, Max: 255}
	DefaultRelightIntensity = IntensityRange{Min: 100, Max: 255}
)

type GPIO struct {
	ButtonA       *int `json:"button_a"`
	ButtonB       *int `json:"button_b"`
	SoundSwitch   *int `json:"sound_switch"`
	SpeakerEnable *int `json:"speaker_enable"`
}

type IntensityRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Config struct {
	ConfigFile string        `json:"-"`
	LogLevel   zerolog.Level `json:"-"`
	LogFile    string        `json:"-"`
	DBPath     string        `json:"-"`
	Simulate   bool          `json:"-"`
	APIPort    int           `json:"-"`

	PixelCount  int         `json:"pixel_count"`
	Brightness  float64     `json:"brightness"`
	LEDDevice   string      `json:"led_device"`
	SoundFile   string      `json:"sound_file"`
	AudioPlayer string      `json:"audio_player"`
	FireColor   model.Color `json:"fire_color"`
	EditColor   model.Color `json:"edit_color"`

	SleepIncrementSeconds    int     `json:"sleep_increment_seconds"`
	SleepMaxIncrements       int     `json:"sleep_max_increments"`
	InitialSleepIncrements   int     `json:"initial_sleep_increments"`
	KeyRepeatMillis          int     `json:"key_repeat_millis"`
	InteractionTimeoutMillis int     `json:"interaction_timeout_millis"`
	FrameIntervalMillis      int     `json:"frame_interval_millis"`
	PollIntervalMillis       int     `json:"poll_interval_millis"`
	FadeSteps                int     `json:"fade_steps"`
	FadeFactor               float64 `json:"fade_factor"`
	FadeStepMillis           int     `json:"fade_step_millis"`

	FlameDecayStep   int            `json:"flame_decay_step"`
	StartupIntensity IntensityRange `json:"startup_intensity"`
	RelightIntensity IntensityRange `json:"relight_intensity"`

	EnableDatadog          bool     `json:"enable_datadog"`
	DDAgentAddr            string   `json:"dd_agent_addr"`
	DDNamespace            string   `json:"dd_namespace"`
	DDTags                 []string `json:"dd_tags"`
	MetricsIntervalSeconds int      `json:"metrics_interval_seconds"`

	NtfyTopic string `json:"ntfy_topic"`

	BootScriptFilePath string `json:"boot_script_file_path"`
	OSServicePath      string `json:"os_service_path"`
	MainServicePath    string `json:"main_service_path"`

	GPIO GPIO `json:"gpio"`
}

// Load parses flags (overridable with FIREPLACE_* environment variables) and
// the JSON config file. Invalid configuration panics.
func Load(args []string) Config {
	var cfg Config
	var logLevel string

	fs := flag.NewFlagSet("fireplace", flag.ExitOnError)
	fs.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to controller config file")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", "/var/log/fireplace-controller.log", "Path to log file")
	fs.StringVar(&cfg.DBPath, "db", "data/fireplace.db", "Path to the SQLite event journal")
	fs.BoolVar(&cfg.Simulate, "simulate", false, "Run in a terminal simulator instead of on hardware")
	fs.IntVar(&cfg.APIPort, "api-port", 8080, "Port for the status API (0 disables it)")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("FIREPLACE")); err != nil {
		panic("Failed to parse flags: " + err.Error())
	}

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	switch {
	case errors.Is(err, os.ErrNotExist) && cfg.Simulate:
		// the simulator runs on defaults alone
	case err != nil:
		panic("Failed to load config file: " + err.Error())
	default:
		defer file.Close()
		if err := cfg.decode(file); err != nil {
			panic("Failed to parse config file: " + err.Error())
		}
	}

	cfg.applyDefaults()
	cfg.validate()
	return cfg
}

func (cfg *Config) decode(r io.Reader) error {
	return json.NewDecoder(r).Decode(cfg)
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) applyDefaults() {
	setInt(&cfg.PixelCount, DefaultPixelCount)
	setInt(&cfg.SleepIncrementSeconds, DefaultSleepIncrementSeconds)
	setInt(&cfg.SleepMaxIncrements, DefaultSleepMaxIncrements)
	setInt(&cfg.InitialSleepIncrements, DefaultInitialSleepIncrements)
	setInt(&cfg.KeyRepeatMillis, DefaultKeyRepeatMillis)
	setInt(&cfg.InteractionTimeoutMillis, DefaultInteractionTimeoutMillis)
	setInt(&cfg.FrameIntervalMillis, DefaultFrameIntervalMillis)
	setInt(&cfg.PollIntervalMillis, DefaultPollIntervalMillis)
	setInt(&cfg.FadeSteps, DefaultFadeSteps)
	setInt(&cfg.FadeStepMillis, DefaultFadeStepMillis)
	setInt(&cfg.FlameDecayStep, DefaultFlameDecayStep)
	setInt(&cfg.MetricsIntervalSeconds, DefaultMetricsIntervalSeconds)

	if cfg.Brightness == 0 {
		cfg.Brightness = DefaultBrightness
	}
	if cfg.FadeFactor == 0 {
		cfg.FadeFactor = DefaultFadeFactor
	}
	if cfg.LEDDevice == "" {
		cfg.LEDDevice = DefaultLEDDevice
	}
	if cfg.SoundFile == "" {
		cfg.SoundFile = DefaultSoundFile
	}
	if cfg.AudioPlayer == "" {
		cfg.AudioPlayer = DefaultAudioPlayer
	}
	if cfg.FireColor == model.Black {
		cfg.FireColor = DefaultFireColor
	}
	if cfg.EditColor == model.Black {
		cfg.EditColor = DefaultEditColor
	}
	if cfg.StartupIntensity == (IntensityRange{}) {
		cfg.StartupIntensity = DefaultStartupIntensity
	}
	if cfg.RelightIntensity == (IntensityRange{}) {
		cfg.RelightIntensity = DefaultRelightIntensity
	}
	if cfg.DDAgentAddr == "" {
		cfg.DDAgentAddr = DefaultDDAgentAddr
	}
	if cfg.DDNamespace == "" {
		cfg.DDNamespace = DefaultDDNamespace
	}
	if cfg.BootScriptFilePath == "" {
		cfg.BootScriptFilePath = "/usr/local/bin/fireplace-pins.sh"
	}
	if cfg.OSServicePath == "" {
		cfg.OSServicePath = "/etc/systemd/system/fireplace-pins.service"
	}
	if cfg.MainServicePath == "" {
		cfg.MainServicePath = "/etc/systemd/system/fireplace-controller.service"
	}
}

func setInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func (cfg *Config) validate() {
	var problems []string

	if !cfg.Simulate {
		problems = append(problems, cfg.validateGPIO()...)
	}

	if cfg.PixelCount < cfg.SleepMaxIncrements {
		problems = append(problems, fmt.Sprintf("pixel_count %d is shorter than the %d segment gauge", cfg.PixelCount, cfg.SleepMaxIncrements))
	}
	if cfg.Brightness < 0 || cfg.Brightness > 1 {
		problems = append(problems, fmt.Sprintf("brightness %.2f outside [0,1]", cfg.Brightness))
	}
	if cfg.FadeFactor <= 0 || cfg.FadeFactor >= 1 {
		problems = append(problems, fmt.Sprintf("fade_factor %.2f outside (0,1)", cfg.FadeFactor))
	}
	if cfg.InitialSleepIncrements > cfg.SleepMaxIncrements {
		problems = append(problems, "initial_sleep_increments exceeds sleep_max_increments")
	}
	for name, r := range map[string]IntensityRange{
		"startup_intensity": cfg.StartupIntensity,
		"relight_intensity": cfg.RelightIntensity,
	} {
		if r.Min < 0 || r.Max > 255 || r.Min > r.Max {
			problems = append(problems, fmt.Sprintf("%s [%d,%d] must satisfy 0 <= min <= max <= 255", name, r.Min, r.Max))
		}
	}
	for name, v := range map[string]int{
		"sleep_increment_seconds":    cfg.SleepIncrementSeconds,
		"sleep_max_increments":       cfg.SleepMaxIncrements,
		"key_repeat_millis":          cfg.KeyRepeatMillis,
		"interaction_timeout_millis": cfg.InteractionTimeoutMillis,
		"frame_interval_millis":      cfg.FrameIntervalMillis,
		"poll_interval_millis":       cfg.PollIntervalMillis,
		"fade_steps":                 cfg.FadeSteps,
		"fade_step_millis":           cfg.FadeStepMillis,
		"flame_decay_step":           cfg.FlameDecayStep,
	} {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative", name))
		}
	}

	if len(problems) > 0 {
		panic("Invalid config: " + strings.Join(problems, "; "))
	}
}

func (cfg *Config) validateGPIO() []string {
	var (
		missingFields []string
		usedPins      = map[int]string{}
		conflicts     []string
	)

	v := reflect.ValueOf(cfg.GPIO)
	t := reflect.TypeOf(cfg.GPIO)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldName := t.Field(i).Tag.Get("json")

		if field.IsNil() {
			missingFields = append(missingFields, "gpio."+fieldName)
			continue
		}

		pin := field.Elem().Int()
		if other, exists := usedPins[int(pin)]; exists {
			conflicts = append(conflicts, fmt.Sprintf("gpio.%s and gpio.%s both use pin %d", fieldName, other, pin))
		} else {
			usedPins[int(pin)] = fieldName
		}
	}

	var problems []string
	if len(missingFields) > 0 {
		problems = append(problems, "missing required GPIO config fields: "+strings.Join(missingFields, ", "))
	}
	if len(conflicts) > 0 {
		problems = append(problems, "conflicting GPIO pins: "+strings.Join(conflicts, ", "))
	}
	return problems
}

func (cfg *Config) SleepIncrement() time.Duration {
	return time.Duration(cfg.SleepIncrementSeconds) * time.Second
}

func (cfg *Config) InitialSleep() time.Duration {
	return time.Duration(cfg.InitialSleepIncrements) * cfg.SleepIncrement()
}

func (cfg *Config) KeyRepeat() time.Duration {
	return time.Duration(cfg.KeyRepeatMillis) * time.Millisecond
}

func (cfg *Config) InteractionTimeout() time.Duration {
	return time.Duration(cfg.InteractionTimeoutMillis) * time.Millisecond
}

func (cfg *Config) FrameInterval() time.Duration {
	return time.Duration(cfg.FrameIntervalMillis) * time.Millisecond
}

func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollIntervalMillis) * time.Millisecond
}

func (cfg *Config) FadeStepDelay() time.Duration {
	return time.Duration(cfg.FadeStepMillis) * time.Millisecond
}

func (cfg *Config) MetricsInterval() time.Duration {
	return time.Duration(cfg.MetricsIntervalSeconds) * time.Second
}
