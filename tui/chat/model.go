// Package chat is the Bubble Tea view of a chat timeline. The rows on screen
// are owned by a reconcile.Controller; this model renders its viewport and
// turns keys into scrolls, selections and chat actions.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/terminalchat/app"
	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/listview"
	"github.com/CrestNiraj12/terminalchat/reconcile"
	"github.com/CrestNiraj12/terminalchat/tui/common"
)

// Copier copies a message to the clipboard.
type Copier interface {
	CopyMessage(m domain.Message) error
}

// Pager reports whether pagination can load anything more.
type Pager interface {
	HasMore() bool
}

// UnreadCounter counts received messages the user has not read.
type UnreadCounter interface {
	Unread() int
}

// ReadSession is the part of the read tracker the view drives directly.
type ReadSession interface {
	ForceUpdate()
	Reset()
}

// Deps holds everything the chat view needs. Controller and Chat are
// required.
type Deps struct {
	Controller *reconcile.Controller
	Chat       app.ChatService
	Copier     Copier
	Pager      Pager
	Unread     UnreadCounter
	Reads      ReadSession
	Now        func() time.Time
}

// --- Messages ---

// MessagesMsg carries a new message list from the chat backend.
type MessagesMsg struct {
	Messages []domain.Message
}

// ComposeMsg asks the root model to open the composer.
type ComposeMsg struct {
	Reply    *domain.ReplyMessage
	EditID   string
	Initial  string
	External bool
}

// StatusMsg is a transient status line for the root model.
type StatusMsg struct {
	Text string
	Err  error
}

// LayoutMsg reports that the user switched chat type or reply mode.
type LayoutMsg struct {
	ChatType  domain.ChatType
	ReplyMode domain.ReplyMode
}

// ClearHighlightsMsg ends the highlight of recently changed rows.
type ClearHighlightsMsg struct{}

// --- Model ---

// Model holds the state for the chat view.
type Model struct {
	deps      Deps
	ctrl      *reconcile.Controller
	render    *renderer
	keys      common.KeyMap
	spinner   spinner.Model
	chatType  domain.ChatType
	replyMode domain.ReplyMode
	messages  []domain.Message
	selected  string
	width     int
	height    int
	menu      menu
}

// New creates a chat model. The controller's list is measured with the
// model's renderer from here on.
func New(deps Deps, chatType domain.ChatType, replyMode domain.ReplyMode) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	r := newRenderer(deps.Now)
	deps.Controller.List().SetRowHeight(r.height)
	return Model{
		deps:      deps,
		ctrl:      deps.Controller,
		render:    r,
		keys:      common.DefaultKeyMap(),
		spinner:   s,
		chatType:  chatType,
		replyMode: replyMode,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// ChatType returns the active layout.
func (m Model) ChatType() domain.ChatType { return m.chatType }

// ReplyMode returns the active reply placement.
func (m Model) ReplyMode() domain.ReplyMode { return m.replyMode }

// Selected returns the id of the selected message, or "".
func (m Model) Selected() string { return m.selected }

// MenuOpen reports whether the action menu or a confirmation is showing.
func (m Model) MenuOpen() bool { return m.menu.mode != menuClosed }

// SetSize resizes the view. Height is the number of lines for the list,
// including the title line.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	m.render.setWidth(width)
	m.ctrl.List().SetRowHeight(m.render.height)
	m.ctrl.SetViewport(max(height-1, 0))
	return m
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case MessagesMsg:
		m.messages = msg.Messages
		m.ctrl.UpdateSections(m.messages, m.chatType, m.replyMode)
		return m, nil

	case ClearHighlightsMsg:
		m.ctrl.List().ClearHighlights()
		return m, nil

	case tea.KeyMsg:
		if m.menu.mode != menuClosed {
			return m.updateMenu(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.step(-1)
	case key.Matches(msg, m.keys.Down):
		m.step(1)
	case key.Matches(msg, m.keys.PageUp):
		m.page(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.page(1)
	case key.Matches(msg, m.keys.Latest):
		m.selected = ""
		m.ctrl.ScrollToEdge(false)
		if reads := m.deps.Reads; reads != nil {
			// Reporting publishes a new message list, which must not happen
			// on the UI goroutine.
			return m, func() tea.Msg {
				reads.ForceUpdate()
				return nil
			}
		}
	case key.Matches(msg, m.keys.Back):
		m.selected = ""
	case key.Matches(msg, m.keys.Compose):
		return m, compose(ComposeMsg{})
	case key.Matches(msg, m.keys.ComposeExt):
		return m, compose(ComposeMsg{External: true})
	case key.Matches(msg, m.keys.ChatType):
		return m.switchLayout(m.chatType^1, m.replyMode)
	case key.Matches(msg, m.keys.ReplyMode):
		return m.switchLayout(m.chatType, m.replyMode^1)
	case key.Matches(msg, m.keys.Menu):
		if target, ok := m.selectedMessage(); ok {
			m.menu = openMenu(target)
		}
	default:
		if target, ok := m.selectedMessage(); ok {
			for _, a := range actionsFor(target) {
				if key.Matches(msg, m.bindingFor(a)) {
					return m.perform(a, target)
				}
			}
		}
	}
	return m, nil
}

func (m Model) switchLayout(chatType domain.ChatType, replyMode domain.ReplyMode) (Model, tea.Cmd) {
	changedType := chatType != m.chatType
	m.chatType, m.replyMode = chatType, replyMode
	m.selected = ""
	if changedType && m.deps.Reads != nil {
		m.deps.Reads.Reset()
	}
	m.ctrl.UpdateSections(m.messages, m.chatType, m.replyMode)
	layout := LayoutMsg{ChatType: chatType, ReplyMode: replyMode}
	return m, func() tea.Msg { return layout }
}

// step moves the selection by delta rows on screen; negative is up.
func (m *Model) step(delta int) {
	order := m.displayOrder()
	if len(order) == 0 {
		return
	}
	idx := -1
	for i, id := range order {
		if id == m.selected {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.selected = m.nearestLiveVisible(order)
	} else {
		m.selected = order[min(max(idx+delta, 0), len(order)-1)]
	}
	m.ctrl.ScrollToMessage(m.selected, false)
}

// displayOrder lists row ids top to bottom as drawn.
func (m Model) displayOrder() []string {
	list := m.ctrl.List()
	var ids []string
	for s := 0; s < list.NumberOfSections(); s++ {
		for r := 0; r < list.NumberOfRows(s); r++ {
			if row, ok := list.Row(listview.IndexPath{Section: s, Row: r}); ok {
				ids = append(ids, row.ID)
			}
		}
	}
	if m.chatType == domain.ChatConversation {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}
	return ids
}

// nearestLiveVisible picks the visible row closest to the newest message.
func (m Model) nearestLiveVisible(order []string) string {
	list := m.ctrl.List()
	for i := len(order) - 1; i >= 0; i-- {
		if list.IsVisible(order[i]) {
			return order[i]
		}
	}
	return order[len(order)-1]
}

func (m *Model) page(dir int) {
	step := max(m.ctrl.List().ViewportHeight()-1, 1)
	// Offsets grow away from the leading edge, which is the bottom of a
	// conversation and the top of comments.
	if m.chatType == domain.ChatConversation {
		dir = -dir
	}
	m.ctrl.Scroll(dir * step)
}

func (m Model) selectedMessage() (domain.Message, bool) {
	if m.selected == "" {
		return domain.Message{}, false
	}
	list := m.ctrl.List()
	ip, ok := list.IndexPathOf(m.selected)
	if !ok {
		return domain.Message{}, false
	}
	row, _ := list.Row(ip)
	return row.Message, true
}

func compose(msg ComposeMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func status(text string, err error) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, Err: err} }
}

// run performs a chat action off the UI goroutine and reports its outcome.
func run(okText string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			if errors.Is(err, domain.ErrNotEditable) {
				return StatusMsg{Text: "That message cannot be changed."}
			}
			return StatusMsg{Err: err}
		}
		return StatusMsg{Text: okText}
	}
}
