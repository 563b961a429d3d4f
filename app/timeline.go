package app

import (
	"context"
	"time"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// PaginationHandler loads more history when the list reaches its last loaded
// row. Calls are fire-and-forget; the result arrives as a new message list.
type PaginationHandler interface {
	// Paginate loads the next page after last, the message at the loaded edge.
	Paginate(ctx context.Context, last domain.Message) error

	// PageSize is the number of messages loaded per page.
	PageSize() int
}

// ReadTracker receives row visibility transitions, exactly once per
// appear and disappear.
type ReadTracker interface {
	MessageDidAppear(id string, createdAt time.Time)
	MessageDidDisappear(id string)
}

// ReadReporter records how far the user has read.
type ReadReporter interface {
	// MarkRead marks every message up to and including id as read.
	MarkRead(ctx context.Context, id string) error
}
