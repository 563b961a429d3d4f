package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/CrestNiraj12/terminalchat/app"
	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/tui/chat"
	"github.com/CrestNiraj12/terminalchat/tui/common"
	"github.com/CrestNiraj12/terminalchat/tui/compose"
)

// highlightFor is how long changed rows stay highlighted.
const highlightFor = 1200 * time.Millisecond

// LayoutFunc is called off the UI goroutine after the user switches chat
// type or reply mode.
type LayoutFunc func(ctx context.Context, chatType domain.ChatType, replyMode domain.ReplyMode) error

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Chat     chat.Deps
	Source   app.MessageSource
	Editor   app.ExternalEditor
	OnLayout LayoutFunc
	Logger   *zap.Logger
}

type activeView int

const (
	chatView activeView = iota
	composeView
)

// App is the root Bubble Tea model. It routes between sub-views.
type App struct {
	deps     Deps
	active   activeView
	chat     chat.Model
	compose  compose.Model
	keys     common.KeyMap
	help     help.Model
	showHelp bool
	status   string // Transient status message (e.g. "Message sent.")
	isErr    bool
	width    int
	height   int
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps, chatType domain.ChatType, replyMode domain.ReplyMode) App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return App{
		deps:   deps,
		active: chatView,
		chat:   chat.New(deps.Chat, chatType, replyMode),
		keys:   common.DefaultKeyMap(),
		help:   help.New(),
	}
}

// Init delegates to the active sub-model and loads the first message list.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.chat.Init(), a.loadMessages())
}

func (a App) loadMessages() tea.Cmd {
	src := a.deps.Source
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		return chat.MessagesMsg{Messages: src.Messages()}
	}
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case applyMsg:
		msg.fn()
		close(msg.done)
		return a, tea.Tick(highlightFor, func(time.Time) tea.Msg { return chat.ClearHighlightsMsg{} })

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.chat = a.chat.SetSize(msg.Width, a.chatHeight())
		if a.active == composeView {
			a.compose = a.compose.SetWidth(msg.Width)
		}
		return a, nil

	case tea.KeyMsg:
		if a.active == chatView && !a.chat.MenuOpen() {
			switch {
			case key.Matches(msg, a.keys.Quit):
				return a, tea.Quit
			case key.Matches(msg, a.keys.Help):
				a.showHelp = !a.showHelp
				a.chat = a.chat.SetSize(a.width, a.chatHeight())
				return a, nil
			}
		}
		if a.active == chatView {
			a.status = ""
		}

	case chat.ComposeMsg:
		a.active = composeView
		a.status = ""
		req := compose.Request{Reply: msg.Reply, EditID: msg.EditID, Initial: msg.Initial}
		if msg.External {
			a.compose = compose.NewEditor(a.deps.Editor, req)
		} else {
			a.compose = compose.NewInline(req, a.width)
		}
		return a, a.compose.Init()

	case compose.DoneMsg:
		a.active = chatView
		if msg.Err != nil {
			return a.setStatus("", msg.Err), nil
		}
		if msg.Text == "" {
			return a.setStatus("Cancelled.", nil), nil
		}
		return a.setStatus("Sending...", nil), a.submit(msg)

	case chat.StatusMsg:
		return a.setStatus(msg.Text, msg.Err), nil

	case chat.LayoutMsg:
		return a, a.layoutChanged(msg)
	}

	// Delegate to the active sub-model.
	switch a.active {
	case composeView:
		if _, ok := msg.(tea.KeyMsg); ok {
			updated, cmd := a.compose.Update(msg)
			a.compose = updated
			return a, cmd
		}
		// Keep the chat ticking and reconciling underneath the composer.
		var cmds []tea.Cmd
		updated, cmd := a.compose.Update(msg)
		a.compose = updated
		cmds = append(cmds, cmd)
		a.chat, cmd = a.chat.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)
	default:
		updated, cmd := a.chat.Update(msg)
		a.chat = updated
		return a, cmd
	}
}

func (a App) setStatus(text string, err error) App {
	a.isErr = err != nil
	switch {
	case err != nil:
		a.deps.Logger.Warn("chat action failed", zap.Error(err))
		a.status = "Error: " + err.Error()
	default:
		a.status = text
	}
	return a
}

// submit sends or edits off the UI goroutine; the service publishes the
// resulting message list on its own.
func (a App) submit(msg compose.DoneMsg) tea.Cmd {
	svc := a.deps.Chat.Chat
	return func() tea.Msg {
		ctx := context.Background()
		if msg.EditID != "" {
			if err := svc.Edit(ctx, msg.EditID, msg.Text); err != nil {
				if errors.Is(err, domain.ErrNotEditable) {
					return chat.StatusMsg{Text: "That message cannot be changed."}
				}
				return chat.StatusMsg{Err: err}
			}
			return chat.StatusMsg{Text: "Message updated."}
		}
		_, err := svc.Send(ctx, domain.Draft{Text: msg.Text, ReplyMessage: msg.Reply, CreatedAt: time.Now()})
		if err != nil {
			return chat.StatusMsg{Err: err}
		}
		return chat.StatusMsg{Text: "Message sent."}
	}
}

func (a App) layoutChanged(msg chat.LayoutMsg) tea.Cmd {
	if a.deps.OnLayout == nil {
		return nil
	}
	fn := a.deps.OnLayout
	return func() tea.Msg {
		if err := fn(context.Background(), msg.ChatType, msg.ReplyMode); err != nil {
			return chat.StatusMsg{Err: err}
		}
		return nil
	}
}

// chatHeight is the number of lines left for the chat after the footer.
func (a App) chatHeight() int {
	footer := 1
	if a.showHelp {
		footer = 6
	}
	return max(a.height-footer, 0)
}

// View renders the active sub-model.
func (a App) View() string {
	if a.active == composeView {
		s := a.compose.View()
		if a.status != "" {
			s += "\n" + a.statusView()
		}
		return s
	}

	footer := a.statusView()
	if footer == "" {
		a.help.ShowAll = a.showHelp
		footer = a.help.View(a.keys)
	}
	return a.chat.View() + "\n" + footer
}

func (a App) statusView() string {
	switch {
	case a.status == "":
		return ""
	case a.isErr:
		return common.ErrorStyle.Render(a.status)
	default:
		return common.StatusBarStyle.Render(a.status)
	}
}
