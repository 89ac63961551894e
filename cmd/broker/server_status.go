package main

import (
	"context"
	"errors"
	"os"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
)

func (s *BrokerServer) Status(ctx context.Context, request *apiv1.StatusRequest) (*apiv1.StatusResponse, error) {
	if err := s.checkOwnership(ctx, request.ProcessIdentifier); err != nil {
		return nil, err
	}

	res, err := s.runner.Status(request.ProcessIdentifier)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.Errorf(codes.NotFound, "process not found: %s", request.ProcessIdentifier)
		}
		return nil, status.Errorf(codes.Internal, "error getting status: %v", err)
	}
	return &apiv1.StatusResponse{
		Process: toProtoProcess(res.Command),
		Status:  toProtoProcessStatus(res.Status),
	}, nil
}
