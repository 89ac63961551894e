// Package config loads gestureback and broker configuration from defaults,
// an optional CUE file and environment variables, in increasing precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	// AppName names the configuration and state directories.
	AppName = "gestureback"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

// ErrInvalidConfig is wrapped by every ValidationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError reports a configuration value that is out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// LoadOptions selects the config file and flag overrides for a load.
type LoadOptions struct {
	// ConfigFilePath is used exclusively when set; a missing file is an error.
	ConfigFilePath string
	// Overrides are applied last, keyed by dotted config key.
	Overrides map[string]any
}

// Log configures a binary's logger.
type Log struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// ParsedLevel returns the configured level, defaulting to info.
func (l Log) ParsedLevel() log.Level {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func validateLevel(field, level string) error {
	if _, err := log.ParseLevel(level); err != nil {
		return invalid(field, "unknown log level %q", level)
	}
	return nil
}

// ConfigDir returns $XDG_CONFIG_HOME/gestureback, defaulting to ~/.config.
func ConfigDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName), nil
}

// StateDir returns $XDG_STATE_HOME/gestureback, defaulting to ~/.local/state.
func StateDir() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, AppName), nil
}

// load builds a viper instance with env binding, merges the config file (if
// any), applies overrides and decodes the result into out. It returns the path
// of the file that was read, or "".
func load(ctx context.Context, envPrefix, schema string, defaults map[string]any, defaultPath string, opts LoadOptions, out any) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	switch {
	case opts.ConfigFilePath != "":
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		resolvedPath = opts.ConfigFilePath
	case defaultPath != "" && fileExists(defaultPath):
		resolvedPath = defaultPath
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, schema, resolvedPath); err != nil {
			return "", err
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	if err := v.Unmarshal(out); err != nil {
		return "", fmt.Errorf("failed to parse config: %w", err)
	}
	return resolvedPath, nil
}

// loadCUEIntoViper validates the file at path against the #Config definition
// of schema and merges it into v.
func loadCUEIntoViper(v *viper.Viper, schema, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("%s: %w", path, userValue.Err())
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("%s: %w: %w", path, ErrInvalidConfig, err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// ReadPEM returns value itself, or the contents of the file it names when
// prefixed with '@'.
func ReadPEM(value string) ([]byte, error) {
	if path, ok := strings.CutPrefix(value, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return data, nil
	}
	return []byte(value), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
