// Package clipboard copies message text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// ErrUnsupported indicates no clipboard utility is available, e.g. on a
// headless machine without xclip or xsel.
var ErrUnsupported = errors.New("clipboard is not available")

// System copies through the OS clipboard.
type System struct {
	write       func(string) error
	unsupported bool
}

func NewSystem() *System {
	return &System{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// CopyMessage copies the text of m. Messages without text copy their
// attachment or recording URLs instead.
func (s *System) CopyMessage(m domain.Message) error {
	text := Text(m)
	if text == "" {
		return domain.ErrEmptyMessage
	}
	if s.unsupported {
		return ErrUnsupported
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

// Text is what copying m puts on the clipboard.
func Text(m domain.Message) string {
	if m.IsDeleted {
		return ""
	}
	if t := strings.TrimSpace(m.Text); t != "" {
		return t
	}
	var urls []string
	for _, a := range m.Attachments {
		urls = append(urls, a.Full)
	}
	if m.Recording != nil && m.Recording.URL != "" {
		urls = append(urls, m.Recording.URL)
	}
	return strings.Join(urls, "\n")
}
