// Package executor runs a shell command through the privilege broker and
// falls back to an unprivileged local process when the broker path fails.
package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

// Options wires the two execution tiers.
type Options struct {
	// Privileged is the broker path. Nil skips straight to Local.
	Privileged lib.Spawner
	// Local is the unprivileged fallback.
	Local  lib.Spawner
	Logger *log.Logger
}

// Executor produces exactly one ExecutionResult per Execute call.
type Executor struct {
	privileged lib.Spawner
	local      lib.Spawner
	logger     *log.Logger
}

func New(opts Options) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Executor{
		privileged: opts.Privileged,
		local:      opts.Local,
		logger:     logger.WithPrefix("executor"),
	}
}

// Execute runs command via "sh -c". It blocks until the process that ran it
// has exited and never returns an error: failures are logged with their class
// and reported as ExitCode -1 with ExecutedPrivileged false.
func (e *Executor) Execute(ctx context.Context, command string) lib.ExecutionResult {
	argv := lib.ShellArgv(command)
	e.logger.Info("executing command", "command", command)

	if e.privileged != nil {
		code, err := e.run(ctx, e.privileged, argv)
		if err == nil {
			e.logger.Info("command finished", "method", "broker", "exit_code", code)
			return lib.ExecutionResult{ExitCode: code, ExecutedPrivileged: true}
		}
		e.logger.Warn("broker execution failed, falling back to local process",
			"class", lib.Classify(err), "err", err)
	}

	if e.local == nil {
		e.logger.Error("no local spawner configured")
		return lib.ExecutionResult{ExitCode: -1}
	}
	code, err := e.run(ctx, e.local, argv)
	if err != nil {
		e.logger.Error("local execution failed", "class", lib.Classify(err), "err", err)
		return lib.ExecutionResult{ExitCode: -1}
	}
	e.logger.Warn("command finished without elevated privileges", "method", "local", "exit_code", code)
	return lib.ExecutionResult{ExitCode: code}
}

func (e *Executor) run(ctx context.Context, spawner lib.Spawner, argv []string) (code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			code, err = -1, fmt.Errorf("%w: panic: %v", lib.ErrUnknown, r)
		}
	}()

	proc, err := spawner.Spawn(ctx, argv, nil, "")
	if err != nil {
		return -1, err
	}
	if proc == nil {
		return -1, fmt.Errorf("%w: spawner returned no process", lib.ErrSpawnFailed)
	}

	output, err := drain(proc.Stdout(), e.logger)
	if err != nil {
		return -1, err
	}
	code, err = proc.Wait()
	if err != nil {
		return -1, err
	}
	if output != "" {
		e.logger.Info("command output", "output", output)
	}
	return code, nil
}

// drain reads r line by line until EOF and returns the trimmed output.
func drain(r io.Reader, logger *log.Logger) (string, error) {
	if r == nil {
		return "", nil
	}
	var out strings.Builder
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			logger.Debug("output", "line", strings.TrimRight(line, "\r\n"))
			out.WriteString(line)
		}
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(out.String()), nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", lib.ErrProcessIO, err)
		}
	}
}
