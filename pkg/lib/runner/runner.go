package runner

import (
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/outbuf"
)

var logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "runner"})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l.WithPrefix("runner")
	}
}

// Options configures a Runner.
type Options struct {
	// Cgroup confines spawned processes when the runner has root privileges on Linux.
	Cgroup CgroupOptions
}

// Runner manages processes started by this library.
type Runner struct {
	mu        sync.RWMutex
	processes map[string]*processEntry
	cgroups   *cgroups
}

type processEntry struct {
	id      string
	command lib.Command
	cmd     *exec.Cmd

	// status fields
	mu       sync.RWMutex
	state    lib.ProcessState
	exitCode *int
	start    time.Time
	end      *time.Time
	// closed once the process has been reaped and status fields are final
	done chan struct{}
	// output buffers (full replay)
	stdout *outbuf.Buffer
	stderr *outbuf.Buffer
	pid    int
}

// NewRunner creates a new Runner.
func NewRunner(opts Options) *Runner {
	return &Runner{
		processes: make(map[string]*processEntry),
		cgroups:   newCgroups(opts.Cgroup),
	}
}
