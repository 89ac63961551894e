package main

import (
	"errors"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
)

// GetOutput replays the process output from the start and follows it until
// the process has exited.
func (s *BrokerServer) GetOutput(request *apiv1.GetOutputRequest, streaming grpc.ServerStreamingServer[apiv1.GetOutputResponse]) error {
	ctx := streaming.Context()
	if err := s.checkOwnership(ctx, request.ProcessIdentifier); err != nil {
		return err
	}

	stdout, stderr, err := s.runner.Output(ctx, request.ProcessIdentifier)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return status.Errorf(codes.NotFound, "process not found: %s", request.ProcessIdentifier)
		}
		return status.Errorf(codes.Internal, "error subscribing to output: %v", err)
	}

	for stdout != nil || stderr != nil {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-stdout:
			if !ok {
				stdout = nil
				continue
			}
			if err := streaming.Send(&apiv1.GetOutputResponse{Type: apiv1.GetOutputResponse_TYPE_STDOUT, Data: chunk}); err != nil {
				return err
			}
		case chunk, ok := <-stderr:
			if !ok {
				stderr = nil
				continue
			}
			if err := streaming.Send(&apiv1.GetOutputResponse{Type: apiv1.GetOutputResponse_TYPE_STDERR, Data: chunk}); err != nil {
				return err
			}
		}
	}
	return nil
}
