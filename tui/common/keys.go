package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines shared key bindings across all views.
type KeyMap struct {
	Quit       key.Binding
	Up         key.Binding // select the message above
	Down       key.Binding // select the message below
	PageUp     key.Binding
	PageDown   key.Binding
	Latest     key.Binding // jump to the newest message
	Menu       key.Binding // message actions
	Back       key.Binding
	Compose    key.Binding // i: inline composer
	ComposeExt key.Binding // I: compose via $EDITOR
	Reply      key.Binding
	Edit       key.Binding
	Delete     key.Binding
	React      key.Binding
	Copy       key.Binding
	ChatType   key.Binding // conversation ⇄ comments
	ReplyMode  key.Binding // quote ⇄ answer
	Help       key.Binding
	Left       key.Binding
	Right      key.Binding
	Confirm    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Latest: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "latest"),
		),
		Menu: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "actions"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Compose: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "write"),
		),
		ComposeExt: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "write ($EDITOR)"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reply"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		React: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "react"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		ChatType: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "conversation/comments"),
		),
		ReplyMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "quote/answer"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Menu, k.Compose, k.Latest, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Latest},
		{k.Menu, k.Reply, k.Edit, k.Delete, k.React, k.Copy},
		{k.Compose, k.ComposeExt, k.ChatType, k.ReplyMode, k.Help, k.Quit},
	}
}
