package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/config"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/runner"
)

// localBroker pretends to be a reachable broker by running commands locally.
type localBroker struct {
	connected bool
	granted   bool
	spawner   lib.Spawner
}

func (b *localBroker) Spawn(ctx context.Context, argv, env []string, dir string) (lib.Process, error) {
	if !b.connected || !b.granted {
		return nil, errors.New("broker unavailable")
	}
	return b.spawner.Spawn(ctx, argv, env, dir)
}

func (b *localBroker) Connected(context.Context) bool         { return b.connected }
func (b *localBroker) PermissionGranted(context.Context) bool { return b.granted }
func (b *localBroker) RequestPermission(int)                  {}
func (b *localBroker) OnPermissionResult(func(int, bool)) func() {
	return func() {}
}
func (b *localBroker) OnConnected(func()) {}

type recordingLauncher struct {
	mu    sync.Mutex
	calls int
}

func (l *recordingLauncher) Launch(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return nil
}

type recordingTerminator struct {
	mu       sync.Mutex
	calls    int
	teardown []func()
}

func (t *recordingTerminator) OnTeardown(f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardown = append(t.teardown, f)
}

func (t *recordingTerminator) Terminate() {
	t.mu.Lock()
	t.calls++
	hooks := t.teardown
	t.mu.Unlock()
	for _, f := range hooks {
		f()
	}
}

func testSession(t *testing.T, command string, broker lib.PrivilegedExec) (*session, *recordingLauncher, *recordingTerminator) {
	t.Helper()
	cfg := config.DefaultApp()
	cfg.Command = command
	cfg.Timing = config.Timing{
		SuccessDelay:      10 * time.Millisecond,
		FailureDelay:      10 * time.Millisecond,
		CountdownTicks:    1,
		CountdownInterval: 10 * time.Millisecond,
	}
	l := &recordingLauncher{}
	term := &recordingTerminator{}
	return &session{
		cfg:        &cfg,
		logger:     log.New(io.Discard),
		broker:     broker,
		local:      runner.NewLocalSpawner(),
		launcher:   l,
		terminator: term,
	}, l, term
}

func runWithTimeout(t *testing.T, s *session) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	if err := runHeadless(ctx, s, &out); err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("run did not finish before the deadline; output:\n%s", out.String())
	}
	return out.String()
}

func TestHeadlessSuccess(t *testing.T) {
	broker := &localBroker{connected: true, granted: true, spawner: runner.NewLocalSpawner()}
	s, _, term := testSession(t, "true", broker)

	out := runWithTimeout(t, s)
	for _, want := range []string{"Checking broker", "Running command", "Done: The command ran with broker privileges."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if term.calls != 1 {
		t.Fatalf("expected one termination, got %d", term.calls)
	}
}

func TestHeadlessCommandFailed(t *testing.T) {
	broker := &localBroker{connected: true, granted: true, spawner: runner.NewLocalSpawner()}
	s, _, _ := testSession(t, "exit 4", broker)

	out := runWithTimeout(t, s)
	if !strings.Contains(out, "Something went wrong: The command exited with code 4.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestHeadlessBrokerDownLaunchesCompanion(t *testing.T) {
	s, l, term := testSession(t, "true", &localBroker{})

	out := runWithTimeout(t, s)
	if !strings.Contains(out, "Broker not running: Opening in 1s") || strings.Contains(out, "Opening in 0s") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if l.calls != 1 {
		t.Fatalf("expected one launch, got %d", l.calls)
	}
	if term.calls != 1 {
		t.Fatalf("expected one termination, got %d", term.calls)
	}
}

func TestHeadlessCancelShutsDown(t *testing.T) {
	s, _, term := testSession(t, "true", &localBroker{connected: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- runHeadless(ctx, s, &out) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runHeadless: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runHeadless did not return after cancel")
	}
	if term.calls != 1 {
		t.Fatalf("expected one termination, got %d", term.calls)
	}
	if !strings.Contains(out.String(), "Broker permission required") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

type stubProgram struct {
	err error
}

func (p *stubProgram) Run() (tea.Model, error) { return nil, p.err }
func (p *stubProgram) Send(tea.Msg)            {}
func (p *stubProgram) ReleaseTerminal() error  { return nil }

func TestProgramEnd(t *testing.T) {
	broken := errors.New("could not open a new TTY")
	tests := []struct {
		name      string
		runErr    error
		wantErr   error
		wantCalls int
	}{
		{name: "quit", wantCalls: 1},
		{name: "killed", runErr: tea.ErrProgramKilled, wantCalls: 1},
		{name: "failed", runErr: broken, wantErr: broken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, term := testSession(t, "true", &localBroker{})
			newProgram := func(context.Context, tea.Model) program {
				return &stubProgram{err: tt.runErr}
			}

			err := runProgram(context.Background(), s, newProgram)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if term.calls != tt.wantCalls {
				t.Fatalf("expected %d terminations, got %d", tt.wantCalls, term.calls)
			}
		})
	}
}
