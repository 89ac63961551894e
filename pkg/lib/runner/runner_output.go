package runner

import (
	"context"
	"io"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/outbuf"
)

// Output subscribes to stdout and stderr of a process. Both channels replay
// everything from the start and close once the process has exited and its
// output is drained, or when ctx is done.
func (runner *Runner) Output(ctx context.Context, id string) (<-chan []byte, <-chan []byte, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("subscribing to output", "id", id)
	return pe.stdout.Subscribe(ctx, 5), pe.stderr.Subscribe(ctx, 5), nil
}

// StdoutReader returns a blocking reader over the process stdout.
func (runner *Runner) StdoutReader(id string) (io.Reader, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}
	return outbuf.NewReader(pe.stdout), nil
}
