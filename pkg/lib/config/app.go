package config

import (
	"context"
	_ "embed"
	"math"
	"path/filepath"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

//go:embed app_schema.cue
var appSchema string

const (
	// DefaultCommand switches the system navigation to full-screen gestures.
	DefaultCommand         = "settings put global force_fsg_nav_bar 1"
	DefaultBrokerAddress   = "localhost:50051"
	DefaultStoreURL        = "https://github.com/SanjoDeundiak/gestureback#broker"
	DefaultCompanionBinary = "broker"
)

// App is the configuration of the gestureback binary.
type App struct {
	Command     string    `mapstructure:"command"`
	RequestCode int       `mapstructure:"request_code"`
	Broker      Client    `mapstructure:"broker"`
	Timing      Timing    `mapstructure:"timing"`
	Companion   Companion `mapstructure:"companion"`
	Log         Log       `mapstructure:"log"`

	// Source is the config file that was read, or "".
	Source string `mapstructure:"-"`
}

// Client locates and authenticates against the broker.
type Client struct {
	Address      string        `mapstructure:"address"`
	TLS          TLS           `mapstructure:"tls"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Timing holds the screen durations.
type Timing struct {
	SuccessDelay      time.Duration `mapstructure:"success_delay"`
	FailureDelay      time.Duration `mapstructure:"failure_delay"`
	CountdownTicks    int           `mapstructure:"countdown_ticks"`
	CountdownInterval time.Duration `mapstructure:"countdown_interval"`
}

// Companion describes how to bring up the broker when it is not running.
type Companion struct {
	Executable string   `mapstructure:"executable"`
	Args       []string `mapstructure:"args"`
	StoreURL   string   `mapstructure:"store_url"`
}

// DefaultApp returns the built-in application configuration.
func DefaultApp() App {
	logFile := ""
	if dir, err := StateDir(); err == nil {
		logFile = filepath.Join(dir, AppName+".log")
	}
	return App{
		Command: DefaultCommand,
		Broker: Client{
			Address:      DefaultBrokerAddress,
			ProbeTimeout: 2 * time.Second,
			PollInterval: 500 * time.Millisecond,
		},
		Timing: Timing{
			SuccessDelay:      1200 * time.Millisecond,
			FailureDelay:      2 * time.Second,
			CountdownTicks:    2,
			CountdownInterval: time.Second,
		},
		Companion: Companion{
			Executable: DefaultCompanionBinary,
			Args:       []string{"serve"},
			StoreURL:   DefaultStoreURL,
		},
		Log: Log{File: logFile, Level: "info"},
	}
}

func appDefaults() map[string]any {
	d := DefaultApp()
	return map[string]any{
		"command":                   d.Command,
		"request_code":              d.RequestCode,
		"broker.address":            d.Broker.Address,
		"broker.tls.cert":           "",
		"broker.tls.key":            "",
		"broker.tls.ca":             "",
		"broker.probe_timeout":      d.Broker.ProbeTimeout,
		"broker.poll_interval":      d.Broker.PollInterval,
		"timing.success_delay":      d.Timing.SuccessDelay,
		"timing.failure_delay":      d.Timing.FailureDelay,
		"timing.countdown_ticks":    d.Timing.CountdownTicks,
		"timing.countdown_interval": d.Timing.CountdownInterval,
		"companion.executable":      d.Companion.Executable,
		"companion.args":            d.Companion.Args,
		"companion.store_url":       d.Companion.StoreURL,
		"log.file":                  d.Log.File,
		"log.level":                 d.Log.Level,
	}
}

// LoadApp reads the application configuration. Without an explicit path it
// looks for config.cue in ConfigDir. Environment variables use the
// GESTUREBACK_ prefix, e.g. GESTUREBACK_BROKER_ADDRESS.
func LoadApp(ctx context.Context, opts LoadOptions) (*App, error) {
	defaultPath := ""
	if dir, err := ConfigDir(); err == nil {
		defaultPath = filepath.Join(dir, "config."+ConfigFileExt)
	}

	var cfg App
	source, err := load(ctx, "GESTUREBACK", appSchema, appDefaults(), defaultPath, opts, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.Source = source
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints that hold regardless of where values came from.
func (c *App) Validate() error {
	if err := ValidateCommand(c.Command); err != nil {
		return err
	}
	if c.RequestCode < 0 || c.RequestCode > math.MaxInt32 {
		return invalid("request_code", "must be between 0 and %d", math.MaxInt32)
	}
	if strings.TrimSpace(c.Broker.Address) == "" {
		return invalid("broker.address", "must not be empty")
	}
	for field, d := range map[string]time.Duration{
		"broker.probe_timeout":      c.Broker.ProbeTimeout,
		"broker.poll_interval":      c.Broker.PollInterval,
		"timing.success_delay":      c.Timing.SuccessDelay,
		"timing.failure_delay":      c.Timing.FailureDelay,
		"timing.countdown_interval": c.Timing.CountdownInterval,
	} {
		if d <= 0 {
			return invalid(field, "must be positive, got %s", d)
		}
	}
	if c.Timing.CountdownTicks < 1 {
		return invalid("timing.countdown_ticks", "must be at least 1, got %d", c.Timing.CountdownTicks)
	}
	return validateLevel("log.level", c.Log.Level)
}

// ValidateCommand checks that command is a non-empty POSIX shell command line.
func ValidateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return invalid("command", "must not be empty")
	}
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	file, err := parser.Parse(strings.NewReader(command), "command")
	if err != nil {
		return invalid("command", "%v", err)
	}
	if len(file.Stmts) == 0 {
		return invalid("command", "contains no statements")
	}
	return nil
}
