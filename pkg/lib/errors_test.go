package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"wrapped sentinel", fmt.Errorf("spawn: %w", ErrPermissionDenied), ErrPermissionDenied},
		{"grpc unavailable", status.Error(codes.Unavailable, "connection refused"), ErrBrokerUnreachable},
		{"grpc permission", status.Error(codes.PermissionDenied, "nope"), ErrPermissionDenied},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "no id"), ErrPermissionDenied},
		{"grpc aborted", status.Error(codes.Aborted, "exec failed"), ErrSpawnFailed},
		{"grpc internal", status.Error(codes.Internal, "boom"), ErrUnknown},
		{"exec not found", &exec.Error{Name: "sh", Err: exec.ErrNotFound}, ErrSpawnFailed},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), ErrProcessIO},
		{"deadline", context.DeadlineExceeded, ErrBrokerUnreachable},
		{"other", errors.New("weird"), ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExecutionResultSucceeded(t *testing.T) {
	if !(ExecutionResult{ExitCode: 0, ExecutedPrivileged: true}).Succeeded() {
		t.Fatalf("expected privileged zero exit to succeed")
	}
	if (ExecutionResult{ExitCode: 0, ExecutedPrivileged: false}).Succeeded() {
		t.Fatalf("unprivileged run must not count as success")
	}
	if (ExecutionResult{ExitCode: 1, ExecutedPrivileged: true}).Succeeded() {
		t.Fatalf("non-zero exit must not count as success")
	}
}

func TestCommandFromArgv(t *testing.T) {
	if _, ok := CommandFromArgv(nil, nil, ""); ok {
		t.Fatalf("expected empty argv to be rejected")
	}
	c, ok := CommandFromArgv(ShellArgv("echo hi"), nil, "")
	if !ok {
		t.Fatalf("expected argv to be accepted")
	}
	if c.Command != "sh" || len(c.Args) != 2 || c.Args[1] != "echo hi" {
		t.Fatalf("unexpected command: %+v", c)
	}
	if got := c.Argv(); len(got) != 3 || got[0] != "sh" {
		t.Fatalf("unexpected argv: %v", got)
	}
}
