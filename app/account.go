package app

import (
	"context"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// AccountService provides information about the signed-in user.
type AccountService interface {
	// CurrentUser returns the user whose messages are drawn as outgoing.
	CurrentUser(ctx context.Context) (domain.User, error)
}
