package chat

import (
	"slices"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/listview"
	"github.com/CrestNiraj12/terminalchat/tui/common"
)

// View renders the title line and the visible part of the list.
func (m Model) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}
	lines := m.listLines()
	if menu := m.menuView(); menu != "" && len(lines) > 0 {
		lines[len(lines)-1] = menu
	}
	return strings.Join(append([]string{m.titleView()}, lines...), "\n")
}

func (m Model) titleView() string {
	parts := []string{
		common.AppTitleStyle.Render("terminalchat"),
		common.ChatNameStyle.Render(m.chatType.String() + " · " + m.replyMode.String()),
	}
	if m.deps.Unread != nil {
		if label := common.UnreadLabel(m.deps.Unread.Unread()); label != "" {
			parts = append(parts, common.UnreadBadgeStyle.Render(label))
		}
	}
	if m.ctrl.HasDeferredInserts() {
		parts = append(parts, common.StatusBarStyle.Render("new messages, press G"))
	}
	if m.loadingMore() {
		parts = append(parts, m.spinner.View()+common.StatusBarStyle.Render(" loading history"))
	}
	return ansi.Truncate(strings.Join(parts, " "), m.width, "…")
}

// loadingMore reports whether the list sits at the end where older pages
// are loaded and there is more to load.
func (m Model) loadingMore() bool {
	if m.deps.Pager == nil || !m.deps.Pager.HasMore() {
		return false
	}
	list := m.ctrl.List()
	if list.NumberOfSections() == 0 {
		return false
	}
	return list.IsAtEdge(listview.EdgeTrailing)
}

// listLines draws the viewport top to bottom. Spans are laid out from the
// leading edge, which is the bottom of the screen in a conversation.
func (m Model) listLines() []string {
	list := m.ctrl.List()
	height := list.ViewportHeight()
	if height <= 0 {
		return nil
	}
	conversation := m.chatType == domain.ChatConversation

	var (
		lines []string
		start = -1
	)
	for _, sp := range list.Window() {
		block := m.spanLines(sp)
		if len(block) < sp.Height {
			block = append(block, make([]string, sp.Height-len(block))...)
		}
		block = block[:sp.Height]
		if conversation {
			slices.Reverse(block)
		}
		if start < 0 {
			start = sp.Top
		}
		lines = append(lines, block...)
	}

	offset := list.Offset()
	if start >= 0 && offset > start {
		lines = lines[min(offset-start, len(lines)):]
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	if conversation {
		slices.Reverse(lines)
	}
	return lines
}

func (m Model) spanLines(sp listview.Span) []string {
	list := m.ctrl.List()
	if sp.Kind == listview.SpanHeader {
		sec, ok := list.Section(sp.IndexPath.Section)
		if !ok {
			return nil
		}
		return []string{m.render.header(sec.Date)}
	}
	row, ok := list.Row(sp.IndexPath)
	if !ok {
		return nil
	}
	return m.render.row(row, rowState{
		selected:    row.ID == m.selected,
		highlighted: list.Highlighted(row.ID),
	})
}
