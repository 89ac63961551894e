package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.cue")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadApp(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.Command != DefaultCommand {
		t.Fatalf("unexpected command %q", cfg.Command)
	}
	if cfg.Timing.SuccessDelay != 1200*time.Millisecond || cfg.Timing.FailureDelay != 2*time.Second {
		t.Fatalf("unexpected delays: %+v", cfg.Timing)
	}
	if cfg.Timing.CountdownTicks != 2 || cfg.Timing.CountdownInterval != time.Second {
		t.Fatalf("unexpected countdown: %+v", cfg.Timing)
	}
	if cfg.Source != "" {
		t.Fatalf("no file expected, got %q", cfg.Source)
	}
	if filepath.Base(cfg.Log.File) != "gestureback.log" {
		t.Fatalf("unexpected log file %q", cfg.Log.File)
	}
}

func TestLoadAppFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
command: "true"
request_code: 7
broker: {
	address: "unix:///run/broker.sock"
	poll_interval: "250ms"
}
timing: countdown_ticks: 3
companion: args: ["serve", "--config", "/tmp/b.cue"]
`)

	cfg, err := LoadApp(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.Command != "true" || cfg.RequestCode != 7 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.Broker.Address != "unix:///run/broker.sock" || cfg.Broker.PollInterval != 250*time.Millisecond {
		t.Fatalf("unexpected broker section: %+v", cfg.Broker)
	}
	if cfg.Timing.CountdownTicks != 3 || cfg.Timing.SuccessDelay != 1200*time.Millisecond {
		t.Fatalf("file must merge over defaults: %+v", cfg.Timing)
	}
	if !slices.Equal(cfg.Companion.Args, []string{"serve", "--config", "/tmp/b.cue"}) {
		t.Fatalf("unexpected args %v", cfg.Companion.Args)
	}
	if cfg.Source != path {
		t.Fatalf("unexpected source %q", cfg.Source)
	}
}

func TestLoadAppDefaultFileLocation(t *testing.T) {
	isolate(t)
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.cue"), []byte(`request_code: 3`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadApp(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.RequestCode != 3 {
		t.Fatalf("default config file not read: %+v", cfg)
	}
}

func TestLoadAppEnvAndOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GESTUREBACK_TIMING_FAILURE_DELAY", "5s")
	t.Setenv("GESTUREBACK_BROKER_ADDRESS", "env:1")
	path := writeConfig(t, `broker: address: "file:1"`)

	cfg, err := LoadApp(context.Background(), LoadOptions{
		ConfigFilePath: path,
		Overrides:      map[string]any{"log.level": "debug"},
	})
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.Timing.FailureDelay != 5*time.Second {
		t.Fatalf("env must override default, got %s", cfg.Timing.FailureDelay)
	}
	if cfg.Broker.Address != "env:1" {
		t.Fatalf("env must override file, got %s", cfg.Broker.Address)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("override not applied, got %s", cfg.Log.Level)
	}
}

func TestLoadAppRejects(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `colour: "red"`},
		{"bad duration", `timing: success_delay: "soon"`},
		{"zero ticks", `timing: countdown_ticks: 0`},
		{"request code overflow", `request_code: 2147483648`},
		{"bad level", `log: level: "loud"`},
		{"shell syntax", `command: "echo 'open"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			if _, err := LoadApp(context.Background(), LoadOptions{ConfigFilePath: path}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadAppMissingFile(t *testing.T) {
	isolate(t)
	_, err := LoadApp(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil {
		t.Fatalf("expected error for missing explicit file")
	}
}

func TestLoadAppCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadApp(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		command string
		ok      bool
	}{
		{DefaultCommand, true},
		{"echo a && echo b", true},
		{"", false},
		{"   ", false},
		{"echo 'open", false},
		{"if true; then", false},
	}
	for _, tt := range tests {
		err := ValidateCommand(tt.command)
		if tt.ok && err != nil {
			t.Fatalf("%q: unexpected error %v", tt.command, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%q: expected ErrInvalidConfig, got %v", tt.command, err)
		}
	}
}

func TestAppValidate(t *testing.T) {
	cfg := DefaultApp()
	cfg.Timing.CountdownInterval = 0
	err := cfg.Validate()
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "timing.countdown_interval" {
		t.Fatalf("expected countdown_interval error, got %v", err)
	}
}

func TestAppValidateRequestCodeRange(t *testing.T) {
	cfg := DefaultApp()
	cfg.RequestCode = math.MaxInt32
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error at the upper bound: %v", err)
	}
	cfg.RequestCode++
	err := cfg.Validate()
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "request_code" {
		t.Fatalf("expected request_code error, got %v", err)
	}
}

func TestLoadBroker(t *testing.T) {
	t.Setenv("BROKER_PERMISSIONS_REQUEST_BURST", "9")
	path := writeConfig(t, `
address: "0.0.0.0:50051"
admin: socket: "/tmp/admin.sock"
permissions: {
	auto_grant: ["gestureback"]
	deny: ["mallory"]
	request_timeout: "30s"
}
cgroup: memory_high: 1048576
`)

	cfg, err := LoadBroker(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("LoadBroker: %v", err)
	}
	if cfg.Address != "0.0.0.0:50051" || cfg.Admin.Socket != "/tmp/admin.sock" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if !slices.Equal(cfg.Permissions.AutoGrant, []string{"gestureback"}) || !slices.Equal(cfg.Permissions.Deny, []string{"mallory"}) {
		t.Fatalf("unexpected permissions: %+v", cfg.Permissions)
	}
	if cfg.Permissions.RequestTimeout != 30*time.Second || cfg.Permissions.RequestBurst != 9 {
		t.Fatalf("unexpected permission limits: %+v", cfg.Permissions)
	}
	if cfg.Cgroup.MemoryHigh != 1048576 {
		t.Fatalf("unexpected memory_high %d", cfg.Cgroup.MemoryHigh)
	}
}

func TestBrokerValidateConflict(t *testing.T) {
	cfg := DefaultBroker()
	cfg.Permissions.AutoGrant = []string{"a"}
	cfg.Permissions.Deny = []string{"a"}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestReadPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, []byte("file-pem"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadPEM("@" + path)
	if err != nil || string(got) != "file-pem" {
		t.Fatalf("ReadPEM file: %q %v", got, err)
	}
	got, err = ReadPEM("inline")
	if err != nil || string(got) != "inline" {
		t.Fatalf("ReadPEM inline: %q %v", got, err)
	}
	if _, err := (TLS{}).ClientConfig(); !errors.Is(err, ErrMissingTLS) {
		t.Fatalf("expected ErrMissingTLS, got %v", err)
	}
}
