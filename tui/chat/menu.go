package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/tui/common"
)

type action int

const (
	actionReply action = iota
	actionCopy
	actionEdit
	actionDelete
	actionReact
)

func (a action) String() string {
	switch a {
	case actionReply:
		return "Reply"
	case actionCopy:
		return "Copy"
	case actionEdit:
		return "Edit"
	case actionDelete:
		return "Delete"
	case actionReact:
		return "React"
	default:
		return ""
	}
}

// Reactions offered by the picker.
var Reactions = []string{"👍", "❤️", "😂", "🎉", "😮", "🙏"}

type menuMode int

const (
	menuClosed menuMode = iota
	menuActions
	menuConfirmDelete
	menuReactions
)

type menu struct {
	mode    menuMode
	target  domain.Message
	actions []action
	cursor  int
}

func openMenu(target domain.Message) menu {
	acts := actionsFor(target)
	if len(acts) == 0 {
		return menu{}
	}
	return menu{mode: menuActions, target: target, actions: acts}
}

// actionsFor lists what the user may do with m. Status and call rows can
// only be copied; deleted messages offer nothing.
func actionsFor(m domain.Message) []action {
	if m.IsDeleted {
		return nil
	}
	hasContent := strings.TrimSpace(m.Text) != "" || len(m.Attachments) > 0 || m.Recording != nil
	if m.Type.IsSystem() {
		if hasContent {
			return []action{actionCopy}
		}
		return nil
	}
	acts := []action{actionReply}
	if hasContent {
		acts = append(acts, actionCopy)
	}
	if m.User.IsCurrentUser {
		if m.Text != "" {
			acts = append(acts, actionEdit)
		}
		acts = append(acts, actionDelete)
	}
	return append(acts, actionReact)
}

func (m Model) bindingFor(a action) key.Binding {
	switch a {
	case actionReply:
		return m.keys.Reply
	case actionCopy:
		return m.keys.Copy
	case actionEdit:
		return m.keys.Edit
	case actionDelete:
		return m.keys.Delete
	default:
		return m.keys.React
	}
}

func (m Model) perform(a action, target domain.Message) (Model, tea.Cmd) {
	m.menu = menu{}
	switch a {
	case actionReply:
		return m, compose(ComposeMsg{Reply: target.ToReplyMessage()})
	case actionEdit:
		return m, compose(ComposeMsg{EditID: target.ID, Initial: target.Text})
	case actionCopy:
		if m.deps.Copier == nil {
			return m, status("Clipboard is not available.", nil)
		}
		copier := m.deps.Copier
		return m, run("Copied to clipboard.", func(context.Context) error {
			return copier.CopyMessage(target)
		})
	case actionDelete:
		m.menu = menu{mode: menuConfirmDelete, target: target}
	case actionReact:
		m.menu = menu{mode: menuReactions, target: target}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.menu.mode {
	case menuConfirmDelete:
		target := m.menu.target
		m.menu = menu{}
		if key.Matches(msg, m.keys.Confirm) {
			chat := m.deps.Chat
			return m, run("Message deleted.", func(ctx context.Context) error {
				return chat.Delete(ctx, target.ID)
			})
		}
		return m, status("Delete cancelled.", nil)

	case menuReactions:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.menu = menu{}
		case key.Matches(msg, m.keys.Left):
			m.menu.cursor = (m.menu.cursor + len(Reactions) - 1) % len(Reactions)
		case key.Matches(msg, m.keys.Right):
			m.menu.cursor = (m.menu.cursor + 1) % len(Reactions)
		case key.Matches(msg, m.keys.Menu):
			target, emoji := m.menu.target, Reactions[m.menu.cursor]
			m.menu = menu{}
			chat := m.deps.Chat
			return m, run("", func(ctx context.Context) error {
				return chat.React(ctx, target.ID, emoji)
			})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.menu = menu{}
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		m.menu.cursor = max(m.menu.cursor-1, 0)
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		m.menu.cursor = min(m.menu.cursor+1, len(m.menu.actions)-1)
	case key.Matches(msg, m.keys.Menu):
		return m.perform(m.menu.actions[m.menu.cursor], m.menu.target)
	default:
		for _, a := range m.menu.actions {
			if key.Matches(msg, m.bindingFor(a)) {
				return m.perform(a, m.menu.target)
			}
		}
	}
	return m, nil
}

func (m Model) menuView() string {
	switch m.menu.mode {
	case menuConfirmDelete:
		return common.ConfirmStyle.Render("Delete this message? (y/N)")
	case menuReactions:
		var b strings.Builder
		for i, emoji := range Reactions {
			style := common.ActionInactiveStyle
			if i == m.menu.cursor {
				style = common.ActionActiveStyle
			}
			b.WriteString(style.Render(emoji))
		}
		return b.String()
	case menuActions:
		var b strings.Builder
		for i, a := range m.menu.actions {
			style := common.ActionInactiveStyle
			if i == m.menu.cursor {
				style = common.ActionActiveStyle
			}
			b.WriteString(style.Render(a.String()))
		}
		return b.String()
	}
	return ""
}
