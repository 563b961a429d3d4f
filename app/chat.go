package app

import (
	"context"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// ChatService carries the user's intents to the chat backend. Every call
// results in a new message list being published through the MessageSource.
type ChatService interface {
	// Send publishes a draft. The returned message starts in StatusSending.
	Send(ctx context.Context, draft domain.Draft) (domain.Message, error)

	// Edit replaces the text of one of the current user's messages.
	Edit(ctx context.Context, id string, text string) error

	// Delete marks a message as deleted.
	Delete(ctx context.Context, id string) error

	// React toggles the current user's emoji reaction on a message.
	React(ctx context.Context, id string, emoji string) error
}

// MessageSource publishes the full message list every time it changes.
type MessageSource interface {
	// Messages returns the currently loaded messages in no particular order.
	Messages() []domain.Message

	// Subscribe registers fn to receive every new message list. The returned
	// func unsubscribes.
	Subscribe(fn func([]domain.Message)) (unsubscribe func())
}
