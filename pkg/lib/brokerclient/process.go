package brokerclient

import (
	"context"
	"errors"
	"fmt"
	"io"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

// Spawn starts argv on the broker host with the broker's privileges. The
// returned process streams stdout as the broker relays it.
func (c *Client) Spawn(ctx context.Context, argv []string, env []string, dir string) (lib.Process, error) {
	if c.isClosed() {
		return nil, fmt.Errorf("%w: %w", lib.ErrBrokerUnreachable, errClosed)
	}
	resp, err := c.api.Spawn(ctx, &apiv1.SpawnRequest{Argv: argv, Env: env, Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("spawn through broker: %w", err)
	}
	id := resp.ProcessIdentifier
	c.logger.Info("broker spawned process", "id", id, "argv", argv)

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := c.api.GetOutput(streamCtx, &apiv1.GetOutputRequest{ProcessIdentifier: id})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("attach to output of %s: %w", id, err)
	}

	pr, pw := io.Pipe()
	go func() {
		defer cancel()
		for {
			msg, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				_ = pw.Close()
				return
			}
			if err != nil {
				_ = pw.CloseWithError(fmt.Errorf("%w: %w", lib.ErrProcessIO, err))
				return
			}
			if msg.GetType() != apiv1.GetOutputResponse_TYPE_STDOUT {
				continue
			}
			if _, err := pw.Write(msg.GetData()); err != nil {
				// Reader went away; stop relaying.
				return
			}
		}
	}()

	return &remoteProcess{client: c, ctx: ctx, id: id, stdout: pr}, nil
}

type remoteProcess struct {
	client *Client
	ctx    context.Context
	id     string
	stdout *io.PipeReader
}

func (p *remoteProcess) Stdout() io.Reader { return p.stdout }

// Wait blocks until the broker reports the process has exited.
func (p *remoteProcess) Wait() (int, error) {
	defer p.stdout.Close()
	resp, err := p.client.api.Wait(p.ctx, &apiv1.WaitRequest{ProcessIdentifier: p.id})
	if err != nil {
		return -1, fmt.Errorf("wait for %s: %w", p.id, err)
	}
	if resp.Status == nil || resp.Status.ExitCode == nil {
		return -1, fmt.Errorf("%w: process %s reported no exit code", lib.ErrProcessIO, p.id)
	}
	return int(*resp.Status.ExitCode), nil
}
