package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/permission"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/runner"
)

// GRPCServer bundles the mTLS gRPC listener, the health service and the
// admin API of one broker instance.
type GRPCServer struct {
	lis    net.Listener
	s      *grpc.Server
	health *health.Server
	admin  *AdminServer
	runner *runner.Runner
	logger *log.Logger
}

// NewGRPCServer builds a broker from cfg. It requires client certificates and
// TLS 1.3.
func NewGRPCServer(cfg *config.Broker, logger *log.Logger) (*GRPCServer, error) {
	tlsConfig, err := cfg.TLS.ServerConfig()
	if err != nil {
		return nil, err
	}
	creds := credentials.NewTLS(tlsConfig)

	registry := permission.NewRegistry(permission.Options{
		AutoGrant:       cfg.Permissions.AutoGrant,
		Deny:            cfg.Permissions.Deny,
		RequestTimeout:  cfg.Permissions.RequestTimeout,
		RequestInterval: cfg.Permissions.RequestRate,
		RequestBurst:    cfg.Permissions.RequestBurst,
		Logger:          logger,
	})
	r := runner.NewRunner(runner.Options{Cgroup: runner.CgroupOptions{
		Root:       cfg.Cgroup.Root,
		MemoryHigh: cfg.Cgroup.MemoryHigh,
		Disabled:   cfg.Cgroup.Disabled,
	}})

	admin, err := NewAdminServer(cfg.Admin.Socket, NewAdminRouter(registry, logger.WithPrefix("admin")))
	if err != nil {
		return nil, err
	}

	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		_ = admin.Close(context.Background())
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	s := grpc.NewServer(
		grpc.Creds(creds),
		grpc.UnaryInterceptor(identityUnary),
		grpc.StreamInterceptor(identityStream),
	)
	apiv1.RegisterBrokerServiceServer(s, NewBrokerServer(r, registry, logger))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(apiv1.BrokerService_ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &GRPCServer{lis: lis, s: s, health: hs, admin: admin, runner: r, logger: logger}, nil
}

// Serve runs the broker until ctx is done or a listener fails.
func (g *GRPCServer) Serve(ctx context.Context) error {
	errs := make(chan error, 2)
	go func() { errs <- g.admin.Serve() }()
	go func() { errs <- g.s.Serve(g.lis) }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
	}
	g.Stop()
	return err
}

// Addr returns the network address the server is bound to.
func (g *GRPCServer) Addr() net.Addr { return g.lis.Addr() }

// Stop marks the broker unhealthy, kills its processes and shuts down both
// listeners.
func (g *GRPCServer) Stop() {
	g.health.Shutdown()
	g.runner.StopAll()

	done := make(chan struct{})
	go func() {
		g.s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		g.s.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := g.admin.Close(ctx); err != nil {
		g.logger.Warn("admin server shutdown", "err", err)
	}
}
