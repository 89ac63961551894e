package main

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	apiv1 "github.com/SanjoDeundiak/gestureback/api/v1"
	"github.com/SanjoDeundiak/gestureback/pkg/lib"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/brokerclient"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/executor"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/permission"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/runner"
)

// fixedIdentity stands in for the mTLS interceptors: every caller is identity.
func fixedIdentity(identity string) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.UnaryInterceptor(func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			return handler(withIdentity(ctx, identity), req)
		}),
		grpc.StreamInterceptor(func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
			return handler(srv, &streamWithCtx{ServerStream: ss, ctx: withIdentity(ss.Context(), identity)})
		}),
	}
}

type brokerEnv struct {
	server   *BrokerServer
	registry *permission.Registry
	client   *brokerclient.Client
}

func startBroker(t *testing.T, identity string, opts permission.Options) *brokerEnv {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	registry := permission.NewRegistry(opts)
	r := runner.NewRunner(runner.Options{Cgroup: runner.CgroupOptions{Disabled: true}})
	srv := NewBrokerServer(r, registry, nil)

	s := grpc.NewServer(fixedIdentity(identity)...)
	apiv1.RegisterBrokerServiceServer(s, srv)
	hs := health.NewServer()
	hs.SetServingStatus(apiv1.BrokerService_ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	go func() { _ = s.Serve(lis) }()

	client, err := brokerclient.New("passthrough:///bufnet", brokerclient.Options{
		PollInterval: 10 * time.Millisecond,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	})
	if err != nil {
		t.Fatalf("brokerclient.New: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		s.Stop()
		r.StopAll()
	})
	return &brokerEnv{server: srv, registry: registry, client: client}
}

func TestSpawnRequiresPermission(t *testing.T) {
	env := startBroker(t, "app", permission.Options{})
	ctx := context.Background()

	if !env.client.Connected(ctx) {
		t.Fatalf("expected connected")
	}
	if env.client.PermissionGranted(ctx) {
		t.Fatalf("expected no permission")
	}
	_, err := env.client.Spawn(ctx, lib.ShellArgv("true"), nil, "")
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
}

func TestAutoGrantThenExecute(t *testing.T) {
	env := startBroker(t, "app", permission.Options{AutoGrant: []string{"app"}})

	results := make(chan bool, 1)
	env.client.OnPermissionResult(func(code int, granted bool) {
		if code == 5 {
			results <- granted
		}
	})
	env.client.RequestPermission(5)
	select {
	case granted := <-results:
		if !granted {
			t.Fatalf("expected auto grant")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no permission result")
	}

	e := executor.New(executor.Options{Privileged: env.client, Local: runner.NewLocalSpawner()})
	got := e.Execute(context.Background(), "echo through broker; exit 0")
	if got != (lib.ExecutionResult{ExitCode: 0, ExecutedPrivileged: true}) {
		t.Fatalf("unexpected result %+v", got)
	}

	got = e.Execute(context.Background(), "exit 6")
	if got != (lib.ExecutionResult{ExitCode: 6, ExecutedPrivileged: true}) {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestExecuteFallsBackWithoutPermission(t *testing.T) {
	env := startBroker(t, "app", permission.Options{})

	e := executor.New(executor.Options{Privileged: env.client, Local: runner.NewLocalSpawner()})
	got := e.Execute(context.Background(), "exit 0")
	if got != (lib.ExecutionResult{ExitCode: 0, ExecutedPrivileged: false}) {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestOperatorDecisionAnswersClient(t *testing.T) {
	env := startBroker(t, "app", permission.Options{})

	results := make(chan bool, 1)
	env.client.OnPermissionResult(func(_ int, granted bool) { results <- granted })
	env.client.RequestPermission(0)

	deadline := time.Now().Add(2 * time.Second)
	for len(env.registry.Pending()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("request never reached the registry")
		}
		time.Sleep(5 * time.Millisecond)
	}
	env.registry.Decide("app", true)

	select {
	case granted := <-results:
		if !granted {
			t.Fatalf("expected grant")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no permission result")
	}
	if !env.client.PermissionGranted(context.Background()) {
		t.Fatalf("grant must be visible to CheckPermission")
	}
}

func TestOwnershipAndLifecycle(t *testing.T) {
	env := startBroker(t, "app", permission.Options{AutoGrant: []string{"app"}})
	srv := env.server
	owner := withIdentity(context.Background(), "app")
	other := withIdentity(context.Background(), "other")

	if _, err := srv.RequestPermission(owner, &apiv1.PermissionRequest{}); err != nil {
		t.Fatalf("RequestPermission: %v", err)
	}
	spawned, err := srv.Spawn(owner, &apiv1.SpawnRequest{Argv: []string{"sleep", "5"}})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	id := spawned.ProcessIdentifier
	if spawned.Status.GetState() != apiv1.ProcessState_PROCESS_STATE_RUNNING {
		t.Fatalf("expected running, got %v", spawned.Status.GetState())
	}

	if _, err := srv.Status(other, &apiv1.StatusRequest{ProcessIdentifier: id}); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied for another identity, got %v", err)
	}
	if _, err := srv.Status(owner, &apiv1.StatusRequest{ProcessIdentifier: "missing"}); status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	stopped, err := srv.Stop(owner, &apiv1.StopRequest{ProcessIdentifier: id})
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped.Status.GetState() != apiv1.ProcessState_PROCESS_STATE_STOPPED {
		t.Fatalf("expected stopped, got %v", stopped.Status.GetState())
	}

	waited, err := srv.Wait(owner, &apiv1.WaitRequest{ProcessIdentifier: id})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if waited.Process.GetCommand() != "sleep" {
		t.Fatalf("unexpected process %+v", waited.Process)
	}
	if _, err := srv.Status(owner, &apiv1.StatusRequest{ProcessIdentifier: id}); status.Code(err) != codes.NotFound {
		t.Fatalf("collected process must be forgotten, got %v", err)
	}
}

func TestSpawnRejectsEmptyArgv(t *testing.T) {
	env := startBroker(t, "app", permission.Options{AutoGrant: []string{"app"}})
	ctx := withIdentity(context.Background(), "app")
	if _, err := env.server.RequestPermission(ctx, &apiv1.PermissionRequest{}); err != nil {
		t.Fatalf("RequestPermission: %v", err)
	}
	if _, err := env.server.Spawn(ctx, &apiv1.SpawnRequest{}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestRequestPermissionRateLimited(t *testing.T) {
	env := startBroker(t, "app", permission.Options{Deny: []string{"app"}, RequestInterval: time.Hour, RequestBurst: 1})
	ctx := withIdentity(context.Background(), "app")

	res, err := env.server.RequestPermission(ctx, &apiv1.PermissionRequest{RequestCode: 3})
	if err != nil || res.Granted || res.RequestCode != 3 {
		t.Fatalf("expected a denial echoing the code, got %+v %v", res, err)
	}
	if _, err := env.server.RequestPermission(ctx, &apiv1.PermissionRequest{}); status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", err)
	}
}

func TestPing(t *testing.T) {
	env := startBroker(t, "app", permission.Options{})
	resp, err := env.server.Ping(context.Background(), &emptypb.Empty{})
	if err != nil || resp.Version != version {
		t.Fatalf("Ping: %+v %v", resp, err)
	}
}
