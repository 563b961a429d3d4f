package compose

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/terminalchat/domain"
)

type stubEditor struct {
	content string
	initial string
	reply   *domain.ReplyMessage
	path    string
}

func (e *stubEditor) Cmd(content string, reply *domain.ReplyMessage) (*exec.Cmd, string, error) {
	e.initial, e.reply = content, reply
	return exec.Command("true"), e.path, nil
}

func (e *stubEditor) ReadContent(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b) + e.content, nil
}

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func finish(t *testing.T, m Model, key tea.KeyType) DoneMsg {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: key})
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg, ok := cmd().(DoneMsg)
	if !ok {
		t.Fatalf("expected DoneMsg")
	}
	return msg
}

func TestInline_SendsTrimmedText(t *testing.T) {
	m := NewInline(Request{}, 80)
	m = typeText(m, "  hello there ")

	msg := finish(t, m, tea.KeyCtrlD)
	if msg.Text != "hello there" || msg.Err != nil || msg.EditID != "" {
		t.Fatalf("unexpected result: %#v", msg)
	}
}

func TestInline_EscCancels(t *testing.T) {
	m := typeText(NewInline(Request{}, 80), "draft")
	if msg := finish(t, m, tea.KeyEsc); msg.Text != "" {
		t.Fatalf("esc should cancel, got %q", msg.Text)
	}
}

func TestInline_UnchangedEditCancels(t *testing.T) {
	m := NewInline(Request{EditID: "m1", Initial: "same"}, 80)
	msg := finish(t, m, tea.KeyCtrlD)
	if msg.Text != "" || msg.EditID != "m1" {
		t.Fatalf("unchanged edit should cancel: %#v", msg)
	}
}

func TestInline_ReplyIsCarriedAndQuoted(t *testing.T) {
	reply := &domain.ReplyMessage{ID: "p1", User: domain.User{Name: "Ana"}, Text: "lunch?"}
	m := NewInline(Request{Reply: reply}, 80)
	if view := m.View(); !strings.Contains(view, "Ana: lunch?") || !strings.Contains(view, "Reply") {
		t.Fatalf("reply quote missing:\n%s", view)
	}
	m = typeText(m, "yes")
	msg := finish(t, m, tea.KeyCtrlD)
	if msg.Reply != reply || msg.Text != "yes" {
		t.Fatalf("unexpected result: %#v", msg)
	}
}

func TestEditor_ReadsResultAfterExit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.md")
	if err := os.WriteFile(path, []byte("from editor"), 0o600); err != nil {
		t.Fatal(err)
	}
	ed := &stubEditor{path: path}
	reply := &domain.ReplyMessage{ID: "p1"}
	m := NewEditor(ed, Request{Reply: reply, Initial: "start"})
	if m.Init() == nil {
		t.Fatalf("expected exec command")
	}
	if ed.initial != "start" || ed.reply != reply {
		t.Fatalf("editor not prepared with request: %#v", ed)
	}

	_, cmd := m.Update(editorFinishedMsg{tmpPath: path})
	msg := cmd().(DoneMsg)
	if msg.Text != "from editor" || msg.Reply != reply {
		t.Fatalf("unexpected result: %#v", msg)
	}
}

func TestEditor_MissingEditorReportsError(t *testing.T) {
	m := NewEditor(nil, Request{})
	msg := m.Init()().(DoneMsg)
	if msg.Err == nil {
		t.Fatalf("expected error without an editor")
	}
}
