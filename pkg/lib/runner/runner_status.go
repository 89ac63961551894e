package runner

import (
	"context"
	"os"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

type StatusResult struct {
	Command *lib.Command
	Status  *lib.ProcessStatus
}

// Status returns the current process and status by identifier.
func (runner *Runner) Status(id string) (*StatusResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}

	status := pe.lockAndGetStatus()
	return &StatusResult{Command: &pe.command, Status: &status}, nil
}

// Wait blocks until the process has exited or ctx is done, and returns its
// final status.
func (runner *Runner) Wait(ctx context.Context, id string) (*StatusResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}

	select {
	case <-pe.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	status := pe.lockAndGetStatus()
	return &StatusResult{Command: &pe.command, Status: &status}, nil
}

// Forget drops a stopped process from the table. Running processes are kept.
func (runner *Runner) Forget(id string) {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	pe := runner.processes[id]
	if pe == nil {
		return
	}
	select {
	case <-pe.done:
		delete(runner.processes, id)
	default:
	}
}

func (runner *Runner) getProcess(id string) (*processEntry, error) {
	runner.mu.RLock()
	pe := runner.processes[id]
	runner.mu.RUnlock()
	if pe == nil {
		return nil, os.ErrNotExist
	}
	return pe, nil
}

func (pe *processEntry) lockAndGetStatus() lib.ProcessStatus {
	pe.mu.RLock()
	defer pe.mu.RUnlock()

	st := lib.ProcessStatus{State: pe.state, StartTime: pe.start}
	if pe.exitCode != nil {
		code := *pe.exitCode
		st.ExitCode = &code
	}
	if pe.end != nil {
		t := *pe.end
		st.EndTime = &t
	}
	return st
}
