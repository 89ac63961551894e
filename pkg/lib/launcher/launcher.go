// Package launcher brings up the broker companion when the broker is not
// running, or points the user at where to get it.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/charmbracelet/log"
)

// ErrNoCompanion is returned when neither the companion nor its store page
// could be opened.
var ErrNoCompanion = errors.New("no way to launch the broker companion")

type Options struct {
	// Executable is looked up in PATH. Empty skips straight to StoreURL.
	Executable string
	Args       []string
	StoreURL   string
	Logger     *log.Logger
}

type Launcher struct {
	opts   Options
	logger *log.Logger

	lookPath func(file string) (string, error)
	start    func(cmd *exec.Cmd) error
	opener   string
}

func New(opts Options) *Launcher {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	return &Launcher{
		opts:     opts,
		logger:   logger.WithPrefix("launcher"),
		lookPath: exec.LookPath,
		start:    startDetached,
		opener:   opener,
	}
}

// Launch starts the companion detached from this process. When that is not
// possible it opens the store URL instead.
func (l *Launcher) Launch(ctx context.Context) error {
	var errs []error
	if l.opts.Executable != "" {
		err := l.launchCompanion()
		if err == nil {
			return nil
		}
		l.logger.Warn("failed to launch broker companion", "executable", l.opts.Executable, "err", err)
		errs = append(errs, err)
	}

	if l.opts.StoreURL != "" {
		err := l.openURL(ctx, l.opts.StoreURL)
		if err == nil {
			return nil
		}
		l.logger.Error("failed to open store page", "url", l.opts.StoreURL, "err", err)
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrNoCompanion, errors.Join(errs...))
}

func (l *Launcher) launchCompanion() error {
	path, err := l.lookPath(l.opts.Executable)
	if err != nil {
		return err
	}
	cmd := exec.Command(path, l.opts.Args...)
	if err := l.start(cmd); err != nil {
		return err
	}
	l.logger.Info("broker companion launched", "path", path, "args", l.opts.Args)
	return nil
}

func (l *Launcher) openURL(ctx context.Context, url string) error {
	path, err := l.lookPath(l.opener)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.start(exec.Command(path, url)); err != nil {
		return err
	}
	l.logger.Info("opened store page", "url", url)
	return nil
}

// startDetached starts cmd in its own session so that it outlives this
// process, and does not wait for it.
func startDetached(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
