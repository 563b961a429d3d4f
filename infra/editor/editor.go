package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// EnvEditor prepares an external editor command using $EDITOR (fallback: "vi").
// It does NOT run the editor itself. Callers use tea.ExecProcess with the
// returned *exec.Cmd so Bubble Tea suspends raw terminal mode.
type EnvEditor struct{}

// NewEnvEditor creates an EnvEditor.
func NewEnvEditor() *EnvEditor {
	return &EnvEditor{}
}

const (
	instructionStart = "<!--"
	instructionEnd   = "-->"
	quoteWidth       = 60
)

func instructions(reply *domain.ReplyMessage) string {
	var b strings.Builder
	b.WriteString(instructionStart + "\nterminalchat: write your message below.\n\n")
	b.WriteString("- SAVE and EXIT to send (e.g., :wq in vi).\n")
	b.WriteString("- Emptying the file cancels.\n")
	if reply != nil {
		quoted := strings.ReplaceAll(reply.Text, "\n", " ")
		quoted = strings.ReplaceAll(quoted, instructionEnd, "")
		fmt.Fprintf(&b, "\nReplying to %s: %s\n", reply.User.Name, ansi.Truncate(quoted, quoteWidth, "…"))
	}
	b.WriteString(instructionEnd + "\n\n")
	return b.String()
}

// Cmd prepares an *exec.Cmd for the editor and a temp file path.
// It writes the instructions and content to the temp file.
func (e *EnvEditor) Cmd(content string, reply *domain.ReplyMessage) (*exec.Cmd, string, error) {
	editorCmd := os.Getenv("EDITOR")
	if editorCmd == "" {
		editorCmd = "vi"
	}

	tmpFile, err := os.CreateTemp("", "terminalchat-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(instructions(reply) + content); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	cmd := exec.Command(editorCmd, "+", tmpPath)
	return cmd, tmpPath, nil
}

// ReadContent reads the temp file, strips the instructions, trims whitespace
// and removes the file.
func (e *EnvEditor) ReadContent(path string) (string, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	content := string(data)
	if strings.HasPrefix(strings.TrimSpace(content), instructionStart) {
		if idx := strings.Index(content, instructionEnd); idx != -1 {
			content = content[idx+len(instructionEnd):]
		}
	}
	return strings.TrimSpace(content), nil
}
