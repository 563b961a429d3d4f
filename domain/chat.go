package domain

import (
	"fmt"
	"strings"
)

// ChatType selects the layout of the timeline.
type ChatType int

const (
	// ChatConversation keeps the latest message at the bottom; new messages
	// appear from the bottom.
	ChatConversation ChatType = iota
	// ChatComments lists messages oldest first, like a comment thread.
	ChatComments
)

func (c ChatType) String() string {
	if c == ChatComments {
		return "comments"
	}
	return "conversation"
}

// ParseChatType parses "conversation" or "comments".
func ParseChatType(s string) (ChatType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "conversation":
		return ChatConversation, nil
	case "comments":
		return ChatComments, nil
	default:
		return 0, fmt.Errorf("unknown chat type %q", s)
	}
}

// ReplyMode selects how replies are placed in the timeline.
type ReplyMode int

const (
	// ReplyQuote shows a reply as the newest message, quoting its parent.
	ReplyQuote ReplyMode = iota
	// ReplyAnswer shows a reply directly under its parent.
	ReplyAnswer
)

func (r ReplyMode) String() string {
	if r == ReplyAnswer {
		return "answer"
	}
	return "quote"
}

// ParseReplyMode parses "quote" or "answer".
func ParseReplyMode(s string) (ReplyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quote":
		return ReplyQuote, nil
	case "answer":
		return ReplyAnswer, nil
	default:
		return 0, fmt.Errorf("unknown reply mode %q", s)
	}
}
