package main

import (
	"context"
	"errors"
	"os"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
)

func (s *BrokerServer) Stop(ctx context.Context, request *apiv1.StopRequest) (*apiv1.StopResponse, error) {
	if err := s.checkOwnership(ctx, request.ProcessIdentifier); err != nil {
		return nil, err
	}

	res, err := s.runner.Stop(request.ProcessIdentifier)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.Errorf(codes.NotFound, "process not found: %s", request.ProcessIdentifier)
		}
		return nil, status.Errorf(codes.Internal, "error stopping process: %v", err)
	}
	s.logger.Info("process stopped", "id", request.ProcessIdentifier)
	return &apiv1.StopResponse{
		Process: toProtoProcess(res.Command),
		Status:  toProtoProcessStatus(res.Status),
	}, nil
}
