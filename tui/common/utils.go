package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// DayLabel names the calendar day of date relative to now.
func DayLabel(date, now time.Time) string {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.In(date.Location()).Date()
	day := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	switch diff := today.Sub(day) / (24 * time.Hour); {
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Yesterday"
	case diff > 1 && diff < 7:
		return date.Format("Monday")
	case y1 == y2:
		return date.Format("Mon, Jan 2")
	default:
		return date.Format("Mon, Jan 2 2006")
	}
}

// Timestamp formats a message time: relative within the last hour, the
// clock time otherwise.
func Timestamp(t, now time.Time) string {
	if d := now.Sub(t); d >= 0 && d < time.Hour {
		if d < time.Minute {
			return "now"
		}
		return humanize.RelTime(t, now, "ago", "from now")
	}
	return t.Format("15:04")
}

// StatusMark renders the delivery state of the current user's message.
func StatusMark(s domain.Status) string {
	switch s {
	case domain.StatusSending:
		return "◷"
	case domain.StatusSent:
		return "✓"
	case domain.StatusReceived:
		return "✓✓"
	case domain.StatusRead:
		return "✓✓ read"
	case domain.StatusError:
		return "! failed"
	default:
		return ""
	}
}

// Duration formats a recording length as m:ss.
func Duration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// OneLine collapses text to a single line no wider than width cells.
func OneLine(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(text, width, "…")
}

// UnreadLabel renders the unread counter, or "" when there is nothing unread.
func UnreadLabel(n int) string {
	if n <= 0 {
		return ""
	}
	return humanize.Comma(int64(n)) + " unread"
}
