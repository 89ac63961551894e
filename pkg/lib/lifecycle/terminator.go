// Package lifecycle owns the single exit path of the application.
package lifecycle

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "lifecycle"})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l.WithPrefix("lifecycle")
	}
}

// Terminator runs teardown hooks once and then exits the process without
// running deferred functions. It may be called from any goroutine; callers
// after the first block until the process is gone.
type Terminator struct {
	mu       sync.Mutex
	teardown []func()
	once     sync.Once
	exit     func(code int)
}

// NewTerminator returns a Terminator that exits through os.Exit.
func NewTerminator() *Terminator {
	return &Terminator{exit: os.Exit}
}

// OnTeardown registers f to run before exit. Hooks run in reverse order of
// registration.
func (t *Terminator) OnTeardown(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardown = append(t.teardown, f)
}

// Terminate tears everything down and exits with status 0.
func (t *Terminator) Terminate() {
	t.once.Do(func() {
		t.mu.Lock()
		hooks := append([]func(){}, t.teardown...)
		t.mu.Unlock()

		logger.Info("finishing and exiting")
		for i := len(hooks) - 1; i >= 0; i-- {
			runHook(hooks[i])
		}
		t.exit(0)
	})
}

func runHook(f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("teardown hook panicked", "panic", r)
		}
	}()
	f()
}
