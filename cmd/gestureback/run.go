package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/screen"
	"github.com/SanjoDeundiak/gestureback/pkg/lib/ui"
)

// program is the part of *tea.Program that runTUI drives.
type program interface {
	ui.Sender
	Run() (tea.Model, error)
	ReleaseTerminal() error
}

func newTeaProgram(ctx context.Context, m tea.Model) program {
	return tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
}

// runTUI drives the controller from the bubbletea program loop.
func runTUI(ctx context.Context, s *session) error {
	return runProgram(ctx, s, newTeaProgram)
}

// runProgram hands a program that ends normally to the terminator. A program
// that fails leaves the process running and its error is returned to the
// caller.
func runProgram(ctx context.Context, s *session, newProgram func(context.Context, tea.Model) program) error {
	s.logStart()
	loop := screen.NewLoop()
	ctrl := s.controller(loop)
	p := newProgram(ctx, ui.NewModel(ctx, ctrl, s.cfg.Command))

	s.terminator.OnTeardown(func() { _ = p.ReleaseTerminal() })
	s.terminator.OnTeardown(loop.Stop)

	go func() {
		if err := ui.Forward(ctx, loop, p); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("event forwarding stopped", "err", err)
		}
	}()

	_, err := p.Run()
	loop.Stop()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		s.logger.Error("terminal UI failed", "err", err)
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	s.terminator.Terminate()
	return nil
}

// runHeadless drives the controller from a screen.Loop on the calling
// goroutine and writes a line to out whenever the screen changes.
func runHeadless(ctx context.Context, s *session, out io.Writer) error {
	s.logStart()
	loop := screen.NewLoop()
	ctrl := s.controller(loop)
	s.terminator.OnTeardown(loop.Stop)

	last := ""
	render := func() {
		v := ctrl.View()
		if v.State == screen.StateTerminated {
			return
		}
		if line := ui.Line(v); line != last {
			fmt.Fprintln(out, line)
			last = line
		}
	}

	ctrl.Start(ctx)
	render()
	err := loop.Run(ctx, func(ev screen.Event) {
		ctrl.Handle(ev)
		render()
		if ctrl.State() == screen.StateTerminated {
			loop.Stop()
		}
	})
	if errors.Is(err, context.Canceled) {
		ctrl.Handle(screen.ShutdownRequested{})
		return nil
	}
	return err
}
