package runner

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

// StopResult returns process info and its final status after Stop.
type StopResult struct {
	Command *lib.Command
	Status  *lib.ProcessStatus
}

// Stop stops the process by identifier and returns final status (or current if already stopped).
func (runner *Runner) Stop(id string) (*StopResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}
	res := StopResult{Command: &pe.command}

	select {
	case <-pe.done:
		st := pe.lockAndGetStatus()
		res.Status = &st
		return &res, nil
	default:
	}

	// Prefer cgroup kill on Linux, else kill the process group.
	killed, err := runner.cgroups.kill(id)
	if err != nil {
		return nil, err
	}
	if !killed {
		// Negative PID addresses the whole process group.
		_ = unix.Kill(-pe.pid, unix.SIGKILL)
	}

	select {
	case <-pe.done:
	case <-time.After(time.Second):
		logger.Warn("process did not stop in time", "id", id)
	}

	st := pe.lockAndGetStatus()
	res.Status = &st
	return &res, nil
}

// StopAll stops every process that is still running.
func (runner *Runner) StopAll() {
	runner.mu.RLock()
	ids := make([]string, 0, len(runner.processes))
	for id, pe := range runner.processes {
		select {
		case <-pe.done:
		default:
			ids = append(ids, id)
		}
	}
	runner.mu.RUnlock()

	for _, id := range ids {
		if _, err := runner.Stop(id); err != nil {
			logger.Warn("failed to stop process", "id", id, "err", err)
		}
	}
}
