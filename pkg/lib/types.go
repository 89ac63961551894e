package lib

import (
	"context"
	"io"
	"time"
)

// ProcessState is the coarse lifecycle state of a spawned process.
type ProcessState int

const (
	ProcessStateUnspecified ProcessState = iota
	ProcessStateRunning
	ProcessStateStopped
)

func (s ProcessState) String() string {
	switch s {
	case ProcessStateRunning:
		return "Running"
	case ProcessStateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Command captures what to run. Env and Dir are optional; nil Env and empty Dir
// inherit from the spawning process.
type Command struct {
	Command string
	Args    []string
	Env     []string
	Dir     string
}

// CommandFromArgv splits argv into a Command. It returns false for an empty argv.
func CommandFromArgv(argv []string, env []string, dir string) (Command, bool) {
	if len(argv) == 0 || argv[0] == "" {
		return Command{}, false
	}
	return Command{
		Command: argv[0],
		Args:    append([]string(nil), argv[1:]...),
		Env:     env,
		Dir:     dir,
	}, true
}

// Argv returns the command followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Command}, c.Args...)
}

// ProcessStatus captures runtime state and timestamps.
type ProcessStatus struct {
	State     ProcessState
	ExitCode  *int
	StartTime time.Time
	EndTime   *time.Time
}

// ShellArgv wraps a command line so that it runs through sh.
func ShellArgv(command string) []string {
	return []string{"sh", "-c", command}
}

// ExecutionResult is the outcome of one command execution.
type ExecutionResult struct {
	ExitCode           int
	ExecutedPrivileged bool
}

// Succeeded reports whether the command ran through the broker and exited cleanly.
func (r ExecutionResult) Succeeded() bool {
	return r.ExitCode == 0 && r.ExecutedPrivileged
}

// BrokerStatus is a point-in-time snapshot of the broker as seen by this client.
type BrokerStatus struct {
	Connected         bool
	PermissionGranted bool
}

// Process is a running command whose output can be drained and whose exit
// code can be awaited.
type Process interface {
	Stdout() io.Reader
	Wait() (int, error)
}

// Spawner starts processes.
type Spawner interface {
	Spawn(ctx context.Context, argv []string, env []string, dir string) (Process, error)
}

// PrivilegedExec is the capability the broker client exposes to the application.
type PrivilegedExec interface {
	Spawner

	Connected(ctx context.Context) bool
	PermissionGranted(ctx context.Context) bool

	// RequestPermission asks the broker for permission without blocking.
	// The outcome is delivered to OnPermissionResult listeners.
	RequestPermission(requestCode int)

	// OnPermissionResult registers a listener and returns a function that removes it.
	OnPermissionResult(listener func(requestCode int, granted bool)) (remove func())

	// OnConnected registers a one-shot listener. It fires immediately (on another
	// goroutine) if the broker is already reachable.
	OnConnected(listener func())
}

// LiveStatus queries the broker for a fresh status snapshot.
func LiveStatus(ctx context.Context, broker PrivilegedExec) BrokerStatus {
	if !broker.Connected(ctx) {
		return BrokerStatus{}
	}
	return BrokerStatus{Connected: true, PermissionGranted: broker.PermissionGranted(ctx)}
}
