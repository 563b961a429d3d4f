package chat

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/timeline"
	"github.com/CrestNiraj12/terminalchat/tui/common"
)

const (
	minBubbleWidth = 16
	answerIndent   = "  ┆ "
)

// renderer draws rows at a given width and remembers their heights, so the
// list can measure rows without re-rendering them on every layout pass.
type renderer struct {
	width   int
	now     func() time.Time
	heights map[string]measured
}

type measured struct {
	row    timeline.MessageRow
	width  int
	height int
}

func newRenderer(now func() time.Time) *renderer {
	return &renderer{now: now, heights: make(map[string]measured)}
}

func (r *renderer) setWidth(w int) {
	if w != r.width {
		r.width = w
		clear(r.heights)
	}
}

// height implements the list's row measure.
func (r *renderer) height(row timeline.MessageRow) int {
	if m, ok := r.heights[row.ID]; ok && m.width == r.width && m.row.Equal(row) {
		return m.height
	}
	h := len(r.row(row, rowState{}))
	r.heights[row.ID] = measured{row: row, width: r.width, height: h}
	return h
}

type rowState struct {
	selected    bool
	highlighted bool
}

// row renders a message as display lines, top to bottom. A row that ends its
// sender group carries a trailing blank line.
func (r *renderer) row(row timeline.MessageRow, st rowState) []string {
	msg := row.Message
	width := max(r.width, minBubbleWidth+4)

	var lines []string
	if msg.Type.IsSystem() {
		lines = []string{r.system(msg, width)}
	} else {
		lines = r.message(row, st, width)
	}

	if cp := row.PositionInCommentsGroup; cp != nil && cp.ParentID != row.ID {
		gutter := common.AnswerGutterStyle.Render(answerIndent)
		for i, ln := range lines {
			lines[i] = gutter + ln
		}
	}
	if row.PositionInUserGroup.IsBottom() {
		lines = append(lines, "")
	}
	return lines
}

func (r *renderer) system(msg domain.Message, width int) string {
	icon := "•"
	if msg.Type == domain.TypeCall {
		icon = "☎"
	}
	text := common.OneLine(icon+" "+msg.Text, width-2)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, common.SystemStyle.Render(text))
}

func (r *renderer) message(row timeline.MessageRow, st rowState, width int) []string {
	msg := row.Message
	own := msg.User.IsCurrentUser
	if row.PositionInCommentsGroup != nil && row.PositionInCommentsGroup.ParentID != row.ID {
		width -= ansi.StringWidth(answerIndent)
	}
	bw := bubbleWidth(width)
	align := lipgloss.Left
	if own && row.PositionInCommentsGroup == nil {
		align = lipgloss.Right
	}
	place := func(s string) []string {
		return strings.Split(lipgloss.PlaceHorizontal(width, align, s), "\n")
	}

	var out []string
	if row.PositionInUserGroup.IsTop() {
		name := msg.User.Name
		style := common.AuthorStyle
		if own {
			name, style = "You", common.OwnAuthorStyle
		}
		out = append(out, place(style.Render(common.OneLine(name, bw)))...)
	}

	bubble := r.bubbleStyle(own, st).Width(bw).Render(r.body(row, bw-2))
	out = append(out, place(bubble)...)

	if row.PositionInUserGroup.IsBottom() {
		meta := common.Timestamp(msg.CreatedAt, r.now())
		if own {
			if mark := common.StatusMark(msg.Status); mark != "" {
				meta += " " + mark
			}
		}
		if msg.IsEncrypted {
			meta = "🔒 " + meta
		}
		out = append(out, place(common.TimestampStyle.Render(meta))...)
	}
	return out
}

func bubbleWidth(width int) int {
	return max(min(width*2/3, width-4), minBubbleWidth)
}

func (r *renderer) bubbleStyle(own bool, st rowState) lipgloss.Style {
	switch {
	case st.selected:
		return common.SelectedBubbleStyle
	case st.highlighted:
		return common.HighlightedBubbleStyle
	case own:
		return common.OwnBubbleStyle
	default:
		return common.BubbleStyle
	}
}

// body renders the inside of a bubble at inner width w.
func (r *renderer) body(row timeline.MessageRow, w int) string {
	msg := row.Message
	if msg.IsDeleted {
		return common.DeletedStyle.Render("message deleted")
	}

	var parts []string
	if q := msg.ReplyMessage; q != nil && row.PositionInCommentsGroup == nil {
		quoted := q.Text
		if quoted == "" && (len(q.Attachments) > 0 || q.Recording != nil) {
			quoted = "media"
		}
		parts = append(parts, common.QuoteStyle.Render(common.OneLine(q.User.Name+": "+quoted, w-2)))
	}
	if text := strings.TrimSpace(msg.Text); text != "" {
		switch msg.Type {
		case domain.TypeGeo:
			text = "📍 " + text
		case domain.TypeDocument, domain.TypeFile:
			text = "📄 " + text
		case domain.TypeURL:
			text = lipgloss.NewStyle().Underline(true).Render(text)
		}
		parts = append(parts, common.ContentStyle.Width(w).Render(text))
	}
	for _, a := range msg.Attachments {
		parts = append(parts, common.MediaStyle.Render(common.OneLine(attachmentIcon(a.Type)+" "+a.Full, w)))
	}
	if rec := msg.Recording; rec != nil {
		parts = append(parts, common.MediaStyle.Render(common.OneLine("▶ "+common.Duration(rec.Duration)+" "+waveform(rec.WaveformSamples), w)))
	}
	if chips := reactionChips(msg.Reactions); chips != "" {
		parts = append(parts, chips)
	}
	return strings.Join(parts, "\n")
}

func attachmentIcon(t domain.AttachmentType) string {
	if t == domain.AttachmentVideo {
		return "🎞"
	}
	return "🖼"
}

var bars = []rune("▁▂▃▄▅▆▇█")

func waveform(samples []float64) string {
	out := make([]rune, 0, len(samples))
	for _, s := range samples {
		i := int(min(max(s, 0), 1) * float64(len(bars)-1))
		out = append(out, bars[i])
	}
	return string(out)
}

// reactionChips groups reactions by emoji in order of first use.
func reactionChips(reactions []domain.Reaction) string {
	if len(reactions) == 0 {
		return ""
	}
	type chip struct {
		emoji   string
		count   int
		pending bool
	}
	var chips []*chip
	byEmoji := map[string]*chip{}
	for _, re := range reactions {
		c, ok := byEmoji[re.Emoji]
		if !ok {
			c = &chip{emoji: re.Emoji}
			byEmoji[re.Emoji] = c
			chips = append(chips, c)
		}
		c.count++
		c.pending = c.pending || re.Status == domain.ReactionSending
	}
	parts := make([]string, 0, len(chips))
	for _, c := range chips {
		label := c.emoji
		if c.count > 1 {
			label += " " + strconv.Itoa(c.count)
		}
		style := common.ReactionStyle
		if c.pending {
			style = common.PendingReactionStyle
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, " ")
}

// header renders a date separator line.
func (r *renderer) header(date time.Time) string {
	label := " " + common.DayLabel(date, r.now()) + " "
	w := max(r.width, ansi.StringWidth(label))
	side := (w - ansi.StringWidth(label)) / 2
	line := strings.Repeat("─", side) + label + strings.Repeat("─", w-side-ansi.StringWidth(label))
	return common.DateHeaderStyle.Render(line)
}
