package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Confirm   key.Binding
	Back      key.Binding
	AddPlayer key.Binding
	Remove    key.Binding
	Seek      key.Binding
	Zone      key.Binding
	Found     key.Binding
	Pause     key.Binding
	Move      key.Binding
	Ask       key.Binding
	Answer    key.Binding
	Veto      key.Binding
	Randomize key.Binding
	Draw      key.Binding
	Play      key.Binding
	Discard   key.Binding
	Trigger   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Confirm, k.Ask, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Confirm, k.Back},
		{k.AddPlayer, k.Remove, k.Seek, k.Zone, k.Found},
		{k.Pause, k.Move, k.Ask, k.Answer, k.Veto, k.Randomize},
		{k.Draw, k.Play, k.Discard, k.Trigger, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default dashboard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "cursor down"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		AddPlayer: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add player"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove player"),
		),
		Seek: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start seeking"),
		),
		Zone: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "entered hiding zone"),
		),
		Found: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "hider found"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause/resume"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move/confirm zone"),
		),
		Ask: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "ask a question"),
		),
		Answer: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "answer pending"),
		),
		Veto: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "veto pending"),
		),
		Randomize: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "randomize pending"),
		),
		Draw: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "draw a card"),
		),
		Play: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "play selected card"),
		),
		Discard: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "discard selected card"),
		),
		Trigger: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trigger time trap"),
		),
		Help: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
