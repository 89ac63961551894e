package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

// ErrNoExitCode is returned when a process ended without a decodable exit code.
var ErrNoExitCode = errors.New("process ended without exit code")

// LocalSpawner runs processes on this host with the caller's own privileges.
// It is the unprivileged fallback of the command executor.
type LocalSpawner struct {
	runner *Runner
}

var _ lib.Spawner = (*LocalSpawner)(nil)

// NewLocalSpawner returns a spawner backed by a runner without cgroup confinement.
func NewLocalSpawner() *LocalSpawner {
	return &LocalSpawner{runner: NewRunner(Options{Cgroup: CgroupOptions{Disabled: true}})}
}

// Spawn starts argv as a child of this process.
func (s *LocalSpawner) Spawn(ctx context.Context, argv []string, env []string, dir string) (lib.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	command, ok := lib.CommandFromArgv(argv, env, dir)
	if !ok {
		return nil, fmt.Errorf("%w: empty argv", lib.ErrSpawnFailed)
	}
	res, err := s.runner.Start(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lib.ErrSpawnFailed, err)
	}
	stdout, err := s.runner.StdoutReader(res.ID)
	if err != nil {
		return nil, err
	}
	return &localProcess{runner: s.runner, id: res.ID, stdout: stdout}, nil
}

type localProcess struct {
	runner *Runner
	id     string
	stdout io.Reader
}

func (p *localProcess) Stdout() io.Reader { return p.stdout }

func (p *localProcess) Wait() (int, error) {
	res, err := p.runner.Wait(context.Background(), p.id)
	if err != nil {
		return -1, err
	}
	p.runner.Forget(p.id)
	if res.Status.ExitCode == nil {
		return -1, fmt.Errorf("%w: %w", lib.ErrProcessIO, ErrNoExitCode)
	}
	return *res.Status.ExitCode, nil
}
