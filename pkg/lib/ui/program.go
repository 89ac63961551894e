package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SanjoDeundiak/gestureback/pkg/lib/screen"
)

// Sender accepts messages for a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Forward pumps events posted to loop into the program until ctx is done or
// the loop is stopped.
func Forward(ctx context.Context, loop *screen.Loop, p Sender) error {
	return loop.Run(ctx, func(ev screen.Event) {
		p.Send(EventMsg{Event: ev})
	})
}
