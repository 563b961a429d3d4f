package domain

import "errors"

var (
	// ErrDuplicateID indicates two messages or rows share an id.
	ErrDuplicateID = errors.New("duplicate message id")

	// ErrMessageNotFound indicates the requested message is not loaded.
	ErrMessageNotFound = errors.New("message not found")

	// ErrEmptyMessage indicates the user submitted a draft with no text.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrInconsistentBatch indicates a list batch left row counts that
	// disagree with the data source.
	ErrInconsistentBatch = errors.New("list batch is inconsistent with data source")

	// ErrNotEditable indicates a menu action targeted a status, call or deleted message.
	ErrNotEditable = errors.New("message cannot be changed")
)
