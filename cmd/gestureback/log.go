package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
)

// openLog sends application logs to cfg.File while the TUI owns the
// terminal. An empty path discards them.
func openLog(cfg config.Log) (*log.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeLog := func() {}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "gestureback",
		ReportTimestamp: true,
		Level:           cfg.ParsedLevel(),
	})
	return logger, closeLog, nil
}
