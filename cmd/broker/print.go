package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	grantedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	deniedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func renderPermissions(view *PermissionsView, now time.Time) string {
	var b strings.Builder

	decisions := newTable("IDENTITY", "DECISION")
	for _, d := range view.Decisions {
		decisions.Row(d.Identity, decisionLabel(d.Granted))
	}
	b.WriteString(decisions.String())
	b.WriteString("\n")

	if len(view.Pending) == 0 {
		b.WriteString("no pending requests")
		return b.String()
	}
	pending := newTable("REQUEST", "IDENTITY", "WAITING", "WAITERS")
	for _, p := range view.Pending {
		pending.Row(p.ID, p.Identity, now.Sub(p.Since).Truncate(time.Second).String(), strconv.Itoa(p.Waiters))
	}
	b.WriteString(pending.String())
	return b.String()
}

func renderDecision(view *DecisionView) string {
	return fmt.Sprintf("%s %s (%d pending request(s) answered)", view.Identity, decisionLabel(view.Granted), view.Resolved)
}

func decisionLabel(granted bool) string {
	if granted {
		return grantedStyle.Render("granted")
	}
	return deniedStyle.Render("denied")
}
