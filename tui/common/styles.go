package common

import "github.com/charmbracelet/lipgloss"

var (
	// AppTitleStyle styles the application title. Rendered at call site with content.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6600")).
			Padding(0, 1)

	// ChatNameStyle styles the chat name shown next to the title.
	ChatNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)

	// AuthorStyle styles the sender name above a group of messages.
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7DC4E4"))

	// OwnAuthorStyle styles the current user's name.
	OwnAuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6DA95"))

	// TimestampStyle styles timestamps and delivery marks.
	TimestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// ContentStyle styles message text.
	ContentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// BubbleStyle draws the bar left of a message body.
	BubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#45475A")).
			PaddingLeft(1)

	// OwnBubbleStyle draws the bar of the current user's messages.
	OwnBubbleStyle = BubbleStyle.
			BorderForeground(lipgloss.Color("#5B6078"))

	// SelectedBubbleStyle draws the bar of the selected message.
	SelectedBubbleStyle = BubbleStyle.
				BorderForeground(lipgloss.Color("#FF6600"))

	// HighlightedBubbleStyle draws the bar of a message that just changed.
	HighlightedBubbleStyle = BubbleStyle.
				BorderForeground(lipgloss.Color("#F9E2AF"))

	// QuoteStyle styles the quoted parent of a reply.
	QuoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8087A2")).
			Italic(true).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#8087A2")).
			PaddingLeft(1)

	// MediaStyle styles attachment and recording lines.
	MediaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C6A0F6"))

	// DeletedStyle styles the placeholder of a deleted message.
	DeletedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Italic(true)

	// SystemStyle styles status and call rows.
	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8087A2")).
			Italic(true)

	// ReactionStyle styles a reaction chip.
	ReactionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5")).
			Background(lipgloss.Color("#363A4F")).
			Padding(0, 1)

	// PendingReactionStyle styles a reaction that is still being sent.
	PendingReactionStyle = ReactionStyle.
				Faint(true)

	// DateHeaderStyle styles the day separator.
	DateHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Bold(true)

	// AnswerGutterStyle styles the gutter drawn left of answers.
	AnswerGutterStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#45475A"))

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// UnreadBadgeStyle styles the unread counter.
	UnreadBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1E2030")).
				Background(lipgloss.Color("#A6DA95")).
				Bold(true).
				Padding(0, 1)

	// ActionActiveStyle styles the currently selected action in the menu.
	ActionActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6600")).
				Bold(true).
				Padding(0, 1)

	// ActionInactiveStyle styles unselected actions in the menu.
	ActionInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6E738D")).
				Padding(0, 1)

	// ConfirmStyle styles the delete confirmation prompt.
	ConfirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true).
			Padding(0, 1)

	// ErrorStyle styles error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)

	// SuccessStyle styles success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6DA95")).
			Bold(true)
)
