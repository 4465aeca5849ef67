// Package tui provides the Bubble Tea dashboard for running a hide-and-seek
// session in the terminal, locally or over SSH.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives the session timers.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the given
// interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
