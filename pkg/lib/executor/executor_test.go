package executor

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/runner"
)

type fakeProcess struct {
	stdout  io.Reader
	code    int
	waitErr error
}

func (p *fakeProcess) Stdout() io.Reader  { return p.stdout }
func (p *fakeProcess) Wait() (int, error) { return p.code, p.waitErr }

type fakeSpawner struct {
	mu    sync.Mutex
	calls [][]string
	proc  *fakeProcess
	err   error
	panic bool
}

func (s *fakeSpawner) Spawn(_ context.Context, argv []string, env []string, dir string) (lib.Process, error) {
	s.mu.Lock()
	s.calls = append(s.calls, argv)
	s.mu.Unlock()
	if s.panic {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.proc, nil
}

func (s *fakeSpawner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func okProcess(code int) *fakeProcess {
	return &fakeProcess{stdout: strings.NewReader("line 1\nline 2\n"), code: code}
}

func TestExecutePrivilegedSuccess(t *testing.T) {
	privileged := &fakeSpawner{proc: okProcess(0)}
	local := &fakeSpawner{proc: okProcess(0)}
	e := New(Options{Privileged: privileged, Local: local})

	got := e.Execute(context.Background(), "echo hi")
	if got != (lib.ExecutionResult{ExitCode: 0, ExecutedPrivileged: true}) {
		t.Fatalf("unexpected result %+v", got)
	}
	if local.count() != 0 {
		t.Fatalf("fallback must not run after a privileged success")
	}
	if !slices.Equal(privileged.calls[0], []string{"sh", "-c", "echo hi"}) {
		t.Fatalf("unexpected argv %v", privileged.calls[0])
	}
}

func TestExecutePrivilegedNonZeroExit(t *testing.T) {
	privileged := &fakeSpawner{proc: okProcess(3)}
	local := &fakeSpawner{proc: okProcess(0)}
	e := New(Options{Privileged: privileged, Local: local})

	got := e.Execute(context.Background(), "false")
	if got != (lib.ExecutionResult{ExitCode: 3, ExecutedPrivileged: true}) {
		t.Fatalf("unexpected result %+v", got)
	}
	if local.count() != 0 {
		t.Fatalf("a non-zero exit is not a spawn failure")
	}
}

func TestExecuteFallsBackOnce(t *testing.T) {
	tests := []struct {
		name       string
		privileged *fakeSpawner
	}{
		{"spawn error", &fakeSpawner{err: lib.ErrBrokerUnreachable}},
		{"wait error", &fakeSpawner{proc: &fakeProcess{stdout: strings.NewReader(""), waitErr: lib.ErrProcessIO}}},
		{"read error", &fakeSpawner{proc: &fakeProcess{stdout: errReader{}}}},
		{"panic", &fakeSpawner{panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := &fakeSpawner{proc: okProcess(0)}
			e := New(Options{Privileged: tt.privileged, Local: local})

			got := e.Execute(context.Background(), "true")
			if got != (lib.ExecutionResult{ExitCode: 0, ExecutedPrivileged: false}) {
				t.Fatalf("unexpected result %+v", got)
			}
			if tt.privileged.count() != 1 || local.count() != 1 {
				t.Fatalf("expected one attempt per tier, got %d/%d", tt.privileged.count(), local.count())
			}
			if !slices.Equal(local.calls[0], []string{"sh", "-c", "true"}) {
				t.Fatalf("fallback must run the same argv, got %v", local.calls[0])
			}
		})
	}
}

func TestExecuteBothTiersFail(t *testing.T) {
	privileged := &fakeSpawner{err: errors.New("unreachable")}
	local := &fakeSpawner{err: lib.ErrSpawnFailed}
	e := New(Options{Privileged: privileged, Local: local})

	got := e.Execute(context.Background(), "true")
	if got != (lib.ExecutionResult{ExitCode: -1}) {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestExecuteWithoutBroker(t *testing.T) {
	local := &fakeSpawner{proc: okProcess(5)}
	e := New(Options{Local: local})

	got := e.Execute(context.Background(), "exit 5")
	if got != (lib.ExecutionResult{ExitCode: 5}) {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestExecuteLocalProcess(t *testing.T) {
	e := New(Options{
		Privileged: &fakeSpawner{err: lib.ErrBrokerUnreachable},
		Local:      runner.NewLocalSpawner(),
	})

	if got := e.Execute(context.Background(), "echo ok; exit 4"); got != (lib.ExecutionResult{ExitCode: 4}) {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestDrain(t *testing.T) {
	out, err := drain(strings.NewReader("a\nb\nno newline"), New(Options{}).logger)
	if err != nil || out != "a\nb\nno newline" {
		t.Fatalf("drain: %q %v", out, err)
	}
	if _, err := drain(errReader{}, New(Options{}).logger); !errors.Is(err, lib.ErrProcessIO) {
		t.Fatalf("expected ErrProcessIO, got %v", err)
	}
}
