package compose

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/terminalchat/app"
	"github.com/CrestNiraj12/terminalchat/domain"
)

// CharLimit caps the length of a message.
const CharLimit = 4000

// --- Mode ---

type mode int

const (
	editorMode mode = iota
	inlineMode
)

// --- Messages ---

// Request describes what is being written.
type Request struct {
	Reply   *domain.ReplyMessage // quoted parent of a new reply
	EditID  string               // message being edited
	Initial string               // starting text
}

// IsEdit reports whether the request edits an existing message.
func (r Request) IsEdit() bool { return r.EditID != "" }

// DoneMsg is sent when composing is complete (success or cancel).
type DoneMsg struct {
	Text   string // Empty if cancelled
	Reply  *domain.ReplyMessage
	EditID string
	Err    error
}

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

// --- Model ---

// Model holds the state for the compose view.
type Model struct {
	mode     mode
	editor   app.ExternalEditor
	req      Request
	status   string
	textarea textarea.Model // Only used in inline mode
	width    int
}

// NewEditor creates a compose model that opens $EDITOR via tea.Exec.
func NewEditor(ed app.ExternalEditor, req Request) Model {
	return Model{
		mode:   editorMode,
		editor: ed,
		req:    req,
		status: "Opening editor...",
	}
}

// NewInline creates a compose model with an inline Bubble Tea textarea.
func NewInline(req Request, width int) Model {
	ta := textarea.New()
	ta.Placeholder = "Message"
	if req.Reply != nil {
		ta.Placeholder = "Reply to " + req.Reply.User.Name
	}
	ta.CharLimit = CharLimit
	ta.ShowLineNumbers = false
	ta.SetValue(req.Initial)
	ta.SetHeight(4)
	ta.Focus()

	m := Model{mode: inlineMode, req: req, textarea: ta}
	return m.SetWidth(width)
}

// SetWidth resizes the inline textarea.
func (m Model) SetWidth(width int) Model {
	m.width = width
	m.textarea.SetWidth(max(width-2, 20))
	return m
}

// Init returns the initial command for the active mode.
func (m Model) Init() tea.Cmd {
	switch m.mode {
	case editorMode:
		return m.launchEditor()
	case inlineMode:
		return textarea.Blink
	}
	return nil
}

// launchEditor prepares the editor command and uses tea.Exec to properly
// suspend Bubble Tea's raw terminal mode while the editor runs.
func (m *Model) launchEditor() tea.Cmd {
	if m.editor == nil {
		return done(DoneMsg{Err: fmt.Errorf("no external editor configured")})
	}
	cmd, tmpPath, err := m.editor.Cmd(m.req.Initial, m.req.Reply)
	if err != nil {
		return done(DoneMsg{Err: fmt.Errorf("preparing editor: %w", err)})
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- Editor mode messages ---

	case editorFinishedMsg:
		if msg.err != nil {
			return m, done(m.result("", fmt.Errorf("editor: %w", msg.err)))
		}
		content, err := m.editor.ReadContent(msg.tmpPath)
		if err != nil {
			return m, done(m.result("", err))
		}
		return m, done(m.result(content, nil))

	// --- Inline mode messages ---

	case tea.KeyMsg:
		if m.mode != inlineMode {
			break
		}

		switch msg.String() {
		case "esc":
			return m, done(m.result("", nil)) // Cancel.

		case "ctrl+d", "ctrl+s":
			return m, done(m.result(m.textarea.Value(), nil))
		}

		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	if m.mode == inlineMode {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	return m, nil
}

// result builds the DoneMsg. Blank or unchanged text cancels.
func (m Model) result(text string, err error) DoneMsg {
	out := DoneMsg{Reply: m.req.Reply, EditID: m.req.EditID, Err: err}
	if err != nil {
		return out
	}
	text = strings.TrimSpace(text)
	if text == "" || text == strings.TrimSpace(m.req.Initial) {
		return out
	}
	out.Text = text
	return out
}

// done wraps a DoneMsg into a tea.Cmd for immediate delivery.
func done(msg DoneMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
