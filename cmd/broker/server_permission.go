package main

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/permission"
)

func (s *BrokerServer) Ping(ctx context.Context, _ *emptypb.Empty) (*apiv1.PingResponse, error) {
	uid := unix.Geteuid()
	return &apiv1.PingResponse{Version: version, Privileged: uid == 0, Uid: int32(uid)}, nil
}

func (s *BrokerServer) CheckPermission(ctx context.Context, _ *emptypb.Empty) (*apiv1.PermissionStatus, error) {
	identity, ok := identityFromContext(ctx)
	if !ok {
		return nil, errNoIdentity
	}
	return &apiv1.PermissionStatus{Granted: s.permissions.Check(identity)}, nil
}

// RequestPermission blocks until the operator decides, the request times out
// or the caller goes away.
func (s *BrokerServer) RequestPermission(ctx context.Context, request *apiv1.PermissionRequest) (*apiv1.PermissionResult, error) {
	identity, ok := identityFromContext(ctx)
	if !ok {
		return nil, errNoIdentity
	}
	s.logger.Info("permission requested", "identity", identity, "request_code", request.RequestCode)

	granted, err := s.permissions.Request(ctx, identity)
	switch {
	case errors.Is(err, permission.ErrRateLimited):
		return nil, status.Errorf(codes.ResourceExhausted, "too many permission requests from %s", identity)
	case err != nil:
		return nil, status.FromContextError(err).Err()
	}
	return &apiv1.PermissionResult{RequestCode: request.RequestCode, Granted: granted}, nil
}
