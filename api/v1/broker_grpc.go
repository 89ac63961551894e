package apiv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	BrokerService_ServiceName                      = "gestureback.broker.v1.BrokerService"
	BrokerService_Ping_FullMethodName              = "/" + BrokerService_ServiceName + "/Ping"
	BrokerService_CheckPermission_FullMethodName   = "/" + BrokerService_ServiceName + "/CheckPermission"
	BrokerService_RequestPermission_FullMethodName = "/" + BrokerService_ServiceName + "/RequestPermission"
	BrokerService_Spawn_FullMethodName             = "/" + BrokerService_ServiceName + "/Spawn"
	BrokerService_GetOutput_FullMethodName         = "/" + BrokerService_ServiceName + "/GetOutput"
	BrokerService_Wait_FullMethodName              = "/" + BrokerService_ServiceName + "/Wait"
	BrokerService_Status_FullMethodName            = "/" + BrokerService_ServiceName + "/Status"
	BrokerService_Stop_FullMethodName              = "/" + BrokerService_ServiceName + "/Stop"
)

// BrokerServiceClient is the client API for BrokerService.
type BrokerServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error)
	CheckPermission(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PermissionStatus, error)
	// RequestPermission blocks until the broker operator decides.
	RequestPermission(ctx context.Context, in *PermissionRequest, opts ...grpc.CallOption) (*PermissionResult, error)
	Spawn(ctx context.Context, in *SpawnRequest, opts ...grpc.CallOption) (*SpawnResponse, error)
	GetOutput(ctx context.Context, in *GetOutputRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[GetOutputResponse], error)
	Wait(ctx context.Context, in *WaitRequest, opts ...grpc.CallOption) (*WaitResponse, error)
	Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	Stop(ctx context.Context, in *StopRequest, opts ...grpc.CallOption) (*StopResponse, error)
}

type brokerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBrokerServiceClient(cc grpc.ClientConnInterface) BrokerServiceClient {
	return &brokerServiceClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *brokerServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, BrokerService_Ping_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerServiceClient) CheckPermission(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PermissionStatus, error) {
	out := new(PermissionStatus)
	if err := c.cc.Invoke(ctx, BrokerService_CheckPermission_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerServiceClient) RequestPermission(ctx context.Context, in *PermissionRequest, opts ...grpc.CallOption) (*PermissionResult, error) {
	out := new(PermissionResult)
	if err := c.cc.Invoke(ctx, BrokerService_RequestPermission_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerServiceClient) Spawn(ctx context.Context, in *SpawnRequest, opts ...grpc.CallOption) (*SpawnResponse, error) {
	out := new(SpawnResponse)
	if err := c.cc.Invoke(ctx, BrokerService_Spawn_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerServiceClient) GetOutput(ctx context.Context, in *GetOutputRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[GetOutputResponse], error) {
	stream, err := c.cc.NewStream(ctx, &BrokerService_ServiceDesc.Streams[0], BrokerService_GetOutput_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[GetOutputRequest, GetOutputResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *brokerServiceClient) Wait(ctx context.Context, in *WaitRequest, opts ...grpc.CallOption) (*WaitResponse, error) {
	out := new(WaitResponse)
	if err := c.cc.Invoke(ctx, BrokerService_Wait_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerServiceClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.cc.Invoke(ctx, BrokerService_Status_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerServiceClient) Stop(ctx context.Context, in *StopRequest, opts ...grpc.CallOption) (*StopResponse, error) {
	out := new(StopResponse)
	if err := c.cc.Invoke(ctx, BrokerService_Stop_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// BrokerServiceServer is the server API for BrokerService.
// Implementations must embed UnimplementedBrokerServiceServer.
type BrokerServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	CheckPermission(context.Context, *emptypb.Empty) (*PermissionStatus, error)
	RequestPermission(context.Context, *PermissionRequest) (*PermissionResult, error)
	Spawn(context.Context, *SpawnRequest) (*SpawnResponse, error)
	GetOutput(*GetOutputRequest, grpc.ServerStreamingServer[GetOutputResponse]) error
	Wait(context.Context, *WaitRequest) (*WaitResponse, error)
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	Stop(context.Context, *StopRequest) (*StopResponse, error)
	mustEmbedUnimplementedBrokerServiceServer()
}

// UnimplementedBrokerServiceServer answers every method with codes.Unimplemented.
type UnimplementedBrokerServiceServer struct{}

func (UnimplementedBrokerServiceServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedBrokerServiceServer) CheckPermission(context.Context, *emptypb.Empty) (*PermissionStatus, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CheckPermission not implemented")
}
func (UnimplementedBrokerServiceServer) RequestPermission(context.Context, *PermissionRequest) (*PermissionResult, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RequestPermission not implemented")
}
func (UnimplementedBrokerServiceServer) Spawn(context.Context, *SpawnRequest) (*SpawnResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Spawn not implemented")
}
func (UnimplementedBrokerServiceServer) GetOutput(*GetOutputRequest, grpc.ServerStreamingServer[GetOutputResponse]) error {
	return status.Errorf(codes.Unimplemented, "method GetOutput not implemented")
}
func (UnimplementedBrokerServiceServer) Wait(context.Context, *WaitRequest) (*WaitResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Wait not implemented")
}
func (UnimplementedBrokerServiceServer) Status(context.Context, *StatusRequest) (*StatusResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Status not implemented")
}
func (UnimplementedBrokerServiceServer) Stop(context.Context, *StopRequest) (*StopResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Stop not implemented")
}
func (UnimplementedBrokerServiceServer) mustEmbedUnimplementedBrokerServiceServer() {}

func RegisterBrokerServiceServer(s grpc.ServiceRegistrar, srv BrokerServiceServer) {
	s.RegisterService(&BrokerService_ServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(BrokerServiceServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BrokerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BrokerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _BrokerService_GetOutput_Handler(srv any, stream grpc.ServerStream) error {
	m := new(GetOutputRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(BrokerServiceServer).GetOutput(m, &grpc.GenericServerStream[GetOutputRequest, GetOutputResponse]{ServerStream: stream})
}

// BrokerService_ServiceDesc is the grpc.ServiceDesc for BrokerService.
var BrokerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: BrokerService_ServiceName,
	HandlerType: (*BrokerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler: unaryHandler(BrokerService_Ping_FullMethodName, func(s BrokerServiceServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.Ping(ctx, in)
			}),
		},
		{
			MethodName: "CheckPermission",
			Handler: unaryHandler(BrokerService_CheckPermission_FullMethodName, func(s BrokerServiceServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.CheckPermission(ctx, in)
			}),
		},
		{
			MethodName: "RequestPermission",
			Handler: unaryHandler(BrokerService_RequestPermission_FullMethodName, func(s BrokerServiceServer, ctx context.Context, in *PermissionRequest) (any, error) {
				return s.RequestPermission(ctx, in)
			}),
		},
		{
			MethodName: "Spawn",
			Handler: unaryHandler(BrokerService_Spawn_FullMethodName, func(s BrokerServiceServer, ctx context.Context, in *SpawnRequest) (any, error) {
				return s.Spawn(ctx, in)
			}),
		},
		{
			MethodName: "Wait",
			Handler: unaryHandler(BrokerService_Wait_FullMethodName, func(s BrokerServiceServer, ctx context.Context, in *WaitRequest) (any, error) {
				return s.Wait(ctx, in)
			}),
		},
		{
			MethodName: "Status",
			Handler: unaryHandler(BrokerService_Status_FullMethodName, func(s BrokerServiceServer, ctx context.Context, in *StatusRequest) (any, error) {
				return s.Status(ctx, in)
			}),
		},
		{
			MethodName: "Stop",
			Handler: unaryHandler(BrokerService_Stop_FullMethodName, func(s BrokerServiceServer, ctx context.Context, in *StopRequest) (any, error) {
				return s.Stop(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetOutput",
			Handler:       _BrokerService_GetOutput_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "api/v1/broker.go",
}
