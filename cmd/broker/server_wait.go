package main

import (
	"context"
	"errors"
	"os"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
)

// Wait blocks until the process exits. The broker forgets the process once
// its owner has collected the exit status.
func (s *BrokerServer) Wait(ctx context.Context, request *apiv1.WaitRequest) (*apiv1.WaitResponse, error) {
	if err := s.checkOwnership(ctx, request.ProcessIdentifier); err != nil {
		return nil, err
	}

	res, err := s.runner.Wait(ctx, request.ProcessIdentifier)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.Errorf(codes.NotFound, "process not found: %s", request.ProcessIdentifier)
		}
		return nil, status.FromContextError(err).Err()
	}
	if res.Status.ExitCode != nil {
		s.logger.Info("process collected", "id", request.ProcessIdentifier, "exit_code", *res.Status.ExitCode)
	}
	s.forget(request.ProcessIdentifier)

	return &apiv1.WaitResponse{
		Process: toProtoProcess(res.Command),
		Status:  toProtoProcessStatus(res.Status),
	}, nil
}
