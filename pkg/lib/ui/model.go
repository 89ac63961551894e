package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/screen"
)

// EventMsg wraps a screen event for delivery through the bubbletea program.
type EventMsg struct {
	Event screen.Event
}

type startMsg struct{}

// Model renders a screen.Controller. Every controller call happens inside
// Update, so the bubbletea loop is the controller's UI goroutine.
type Model struct {
	ctx     context.Context
	ctrl    *screen.Controller
	command string
	spinner spinner.Model
	width   int
	height  int
}

func NewModel(ctx context.Context, ctrl *screen.Controller, command string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle
	return &Model{ctx: ctx, ctrl: ctrl, command: command, spinner: sp}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(func() tea.Msg { return startMsg{} }, m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m.ctrl.Start(m.ctx)
	case EventMsg:
		m.ctrl.Handle(msg.Event)
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "g":
			m.ctrl.Handle(screen.GrantRequested{})
		case "q", "esc", "ctrl+c":
			m.ctrl.Handle(screen.ShutdownRequested{})
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	if m.ctrl.State() == screen.StateTerminated {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) View() string {
	v := m.ctrl.View()
	if v.State == screen.StateTerminated {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headline(v))
	if detail := Detail(v); detail != "" {
		b.WriteString("\n\n")
		b.WriteString(detail)
	}
	if v.State == screen.StateExecuting {
		b.WriteString("\n\n")
		b.WriteString(commandStyle.Render(m.command))
	}
	if hint := hint(v); hint != "" {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(hint))
	}

	frame := frameStyle.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return frame
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame)
}

func (m *Model) headline(v screen.View) string {
	text := Headline(v)
	switch v.State {
	case screen.StateExecuting, screen.StateWaitingForBroker, screen.StateInit:
		return m.spinner.View() + titleStyle.Render(text)
	case screen.StateSuccess:
		return successStyle.Render("✓ " + text)
	case screen.StateGenericFailure:
		return failureStyle.Render("✗ " + text)
	case screen.StateNotRunningCountdown, screen.StatePermissionRequest:
		return warnStyle.Render(text)
	}
	return titleStyle.Render(text)
}

func hint(v screen.View) string {
	switch v.State {
	case screen.StatePermissionRequest:
		return "enter: request again • q: quit"
	case screen.StateNotRunningCountdown:
		return "q: quit"
	}
	return ""
}
