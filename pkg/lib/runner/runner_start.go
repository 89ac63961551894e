package runner

import (
	"errors"
	"os/exec"
	"time"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/outbuf"
)

type StartResult struct {
	ID     string
	pid    int
	Status *lib.ProcessStatus
}

// Start starts a new process, returning its generated identifier and initial status.
func (runner *Runner) Start(command lib.Command) (*StartResult, error) {
	if command.Command == "" {
		return nil, errors.New("command is required")
	}
	processId := lib.NewID()

	cmd := exec.Command(command.Command, command.Args...)
	// Empty Dir and nil Env inherit from the runner's own process.
	cmd.Dir = command.Dir
	cmd.Env = command.Env

	attr, err := runner.cgroups.procAttr(processId)
	if err != nil {
		return nil, err
	}
	cmd.SysProcAttr = attr.Raw

	stdout := outbuf.New()
	stderr := outbuf.New()

	// cmd.Stdin is left nil, so it will use /dev/null
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	pe := &processEntry{
		id:      processId,
		command: command,
		cmd:     cmd,
		state:   lib.ProcessStateRunning,
		start:   time.Now(),
		done:    make(chan struct{}),
		stdout:  stdout,
		stderr:  stderr,
	}

	logger.Info("starting process", "id", processId, "command", command.Command, "args", command.Args)
	err = cmd.Start()
	if attr.File != nil {
		_ = attr.File.Close()
	}
	if err != nil {
		logger.Warn("failed to start process", "id", processId, "err", err)
		runner.cgroups.cleanup(processId)
		return nil, err
	}

	pe.pid = cmd.Process.Pid

	runner.mu.Lock()
	runner.processes[processId] = pe
	runner.mu.Unlock()

	go runner.reap(pe)

	status := pe.lockAndGetStatus()

	return &StartResult{ID: processId, pid: pe.pid, Status: &status}, nil
}

// reap waits for the process to exit and records its final status.
func (runner *Runner) reap(pe *processEntry) {
	err := pe.cmd.Wait()
	if err != nil {
		logger.Info("process finished with error", "id", pe.id, "err", err)
	} else {
		logger.Info("process finished", "id", pe.id)
	}

	pe.stdout.Close()
	pe.stderr.Close()

	pe.mu.Lock()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			pe.exitCode = &code
		}
		// Non-exit errors (e.g. copying output failed) leave exitCode nil.
	} else {
		code := 0
		pe.exitCode = &code
	}
	now := time.Now()
	pe.end = &now
	pe.state = lib.ProcessStateStopped
	pe.mu.Unlock()

	runner.cgroups.cleanup(pe.id)
	close(pe.done)
}
