package app

import (
	"os/exec"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// ExternalEditor lets the user write a long message in their own editor.
// The TUI suspends itself to run the command, then reads the result back.
// Short messages use the inline composer in the Bubble Tea layer instead.
type ExternalEditor interface {
	// Cmd prepares the editor on a temp file holding content. reply, when
	// set, is quoted in the file's instructions.
	Cmd(content string, reply *domain.ReplyMessage) (cmd *exec.Cmd, path string, err error)

	// ReadContent returns the edited message and removes the temp file.
	ReadContent(path string) (string, error)
}
