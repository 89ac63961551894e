package main

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

func (s *BrokerServer) Spawn(ctx context.Context, request *apiv1.SpawnRequest) (*apiv1.SpawnResponse, error) {
	identity, err := s.requirePermission(ctx)
	if err != nil {
		return nil, err
	}
	command, ok := lib.CommandFromArgv(request.Argv, request.Env, request.Dir)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "argv must not be empty")
	}

	s.logger.Info("spawning process", "identity", identity, "argv", request.Argv)
	res, err := s.runner.Start(command)
	if err != nil {
		return nil, status.Errorf(codes.Aborted, "error starting process: %s", err)
	}
	s.setOwner(res.ID, identity)

	return &apiv1.SpawnResponse{
		ProcessIdentifier: res.ID,
		Status:            toProtoProcessStatus(res.Status),
	}, nil
}
