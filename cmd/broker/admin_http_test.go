package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/permission"
)

func newTestAdmin(t *testing.T, opts permission.Options) (*permission.Registry, *adminClient) {
	t.Helper()
	registry := permission.NewRegistry(opts)
	srv := httptest.NewServer(NewAdminRouter(registry, log.New(io.Discard)))
	t.Cleanup(srv.Close)
	return registry, &adminClient{http: srv.Client(), base: srv.URL}
}

func TestAdminHealthz(t *testing.T) {
	_, client := newTestAdmin(t, permission.Options{})
	var body map[string]string
	if err := client.do(context.Background(), http.MethodGet, "/healthz", http.StatusOK, &body); err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAdminGrantAnswersPendingRequest(t *testing.T) {
	registry, client := newTestAdmin(t, permission.Options{})
	ctx := context.Background()

	result := make(chan bool, 1)
	go func() {
		granted, _ := registry.Request(ctx, "app")
		result <- granted
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		view, err := client.Permissions(ctx)
		if err != nil {
			t.Fatalf("Permissions: %v", err)
		}
		if len(view.Pending) == 1 && view.Pending[0].Identity == "app" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pending request not listed: %+v", view)
		}
		time.Sleep(5 * time.Millisecond)
	}

	decision, err := client.Decide(ctx, "app", true)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Resolved != 1 || !decision.Granted {
		t.Fatalf("unexpected decision %+v", decision)
	}
	if !<-result {
		t.Fatalf("waiting request must be granted")
	}

	view, err := client.Permissions(ctx)
	if err != nil {
		t.Fatalf("Permissions: %v", err)
	}
	if len(view.Pending) != 0 || len(view.Decisions) != 1 || !view.Decisions[0].Granted {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestAdminDenyAndRevoke(t *testing.T) {
	registry, client := newTestAdmin(t, permission.Options{})
	ctx := context.Background()

	if _, err := client.Decide(ctx, "app", false); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if registry.Check("app") {
		t.Fatalf("denied identity must not hold a grant")
	}
	if err := client.Revoke(ctx, "app"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	err := client.Revoke(ctx, "app")
	if err == nil || !strings.Contains(err.Error(), "no decision for app") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAdminRejectsWrongMethod(t *testing.T) {
	_, client := newTestAdmin(t, permission.Options{})
	err := client.do(context.Background(), http.MethodGet, "/permissions/app/grant", http.StatusOK, nil)
	if err == nil {
		t.Fatalf("GET on a decision route must fail")
	}
}

func TestAdminServerOnUnixSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "run", "admin.sock")
	registry := permission.NewRegistry(permission.Options{})
	admin, err := NewAdminServer(socket, NewAdminRouter(registry, log.New(io.Discard)))
	if err != nil {
		t.Fatalf("NewAdminServer: %v", err)
	}
	go func() { _ = admin.Serve() }()
	t.Cleanup(func() { _ = admin.Close(context.Background()) })

	info, err := os.Stat(socket)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 socket, got %o", perm)
	}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--socket", socket, "grant", "app"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("grant command: %v", err)
	}
	if !strings.Contains(out.String(), "app") || !registry.Check("app") {
		t.Fatalf("grant not applied: %q", out.String())
	}

	out.Reset()
	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--socket", socket, "pending"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("pending command: %v", err)
	}
	if !strings.Contains(out.String(), "IDENTITY") || !strings.Contains(out.String(), "no pending requests") {
		t.Fatalf("unexpected pending output %q", out.String())
	}
}
