package compose

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/terminalchat/tui/common"
)

// View renders the compose view based on the active mode.
func (m Model) View() string {
	switch m.mode {
	case editorMode:
		return m.status + "\n"

	case inlineMode:
		var b strings.Builder
		b.WriteString(common.AppTitleStyle.Render("terminalchat"))
		switch {
		case m.req.IsEdit():
			b.WriteString("  Edit message\n")
		case m.req.Reply != nil:
			b.WriteString("  Reply\n")
		default:
			b.WriteString("  New message\n")
		}
		if r := m.req.Reply; r != nil {
			quote := r.User.Name + ": " + r.Text
			b.WriteString(common.QuoteStyle.Render(common.OneLine(quote, max(m.width-4, 10))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.textarea.View())
		b.WriteString("\n\n")

		if m.status != "" {
			b.WriteString(common.StatusBarStyle.Render(m.status))
		} else {
			b.WriteString(common.StatusBarStyle.Render(
				fmt.Sprintf("  ctrl+d: send • esc: cancel • %d/%d chars",
					len([]rune(m.textarea.Value())), CharLimit),
			))
		}

		return b.String()
	}

	return ""
}
