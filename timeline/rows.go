// Package timeline turns a flat message list into date-keyed sections of rows
// and computes the operations that move an on-screen list from one section
// list to the next.
package timeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// Position labels a row's place in a run. First is the visually topmost row.
type Position int

const (
	PositionFirst Position = iota
	PositionMiddle
	PositionLast
	PositionSingle
)

func (p Position) String() string {
	switch p {
	case PositionFirst:
		return "first"
	case PositionMiddle:
		return "middle"
	case PositionLast:
		return "last"
	default:
		return "single"
	}
}

// IsTop reports whether nothing from the same run is drawn above the row.
func (p Position) IsTop() bool { return p == PositionFirst || p == PositionSingle }

// IsBottom reports whether nothing from the same run is drawn below the row.
func (p Position) IsBottom() bool { return p == PositionLast || p == PositionSingle }

func positionOf(index, count int) Position {
	switch {
	case count <= 1:
		return PositionSingle
	case index == 0:
		return PositionFirst
	case index == count-1:
		return PositionLast
	default:
		return PositionMiddle
	}
}

// CommentsPosition is a row's place in the run made of a first-level message
// followed by its answers. Only set in answer reply mode.
type CommentsPosition struct {
	ParentID     string
	Position     Position
	IsLastInChat bool
}

// MessageRow is a message plus its computed grouping metadata.
type MessageRow struct {
	ID                        string
	Message                   domain.Message
	PositionInUserGroup       Position
	PositionInMessagesSection Position
	PositionInCommentsGroup   *CommentsPosition
}

// Equal reports structural equality over all fields.
func (r MessageRow) Equal(o MessageRow) bool {
	return r.ID == o.ID &&
		r.PositionInUserGroup == o.PositionInUserGroup &&
		r.PositionInMessagesSection == o.PositionInMessagesSection &&
		commentsEqual(r.PositionInCommentsGroup, o.PositionInCommentsGroup) &&
		r.Message.Equal(o.Message)
}

// LayoutChanged reports whether the grouping chrome differs.
func (r MessageRow) LayoutChanged(o MessageRow) bool {
	return r.PositionInUserGroup != o.PositionInUserGroup ||
		r.PositionInMessagesSection != o.PositionInMessagesSection ||
		!commentsEqual(r.PositionInCommentsGroup, o.PositionInCommentsGroup)
}

func (r MessageRow) String() string {
	return fmt.Sprintf("id: %s text: %q status: %s group: %s section: %s",
		r.ID, r.Message.Text, r.Message.Status, r.PositionInUserGroup, r.PositionInMessagesSection)
}

func commentsEqual(a, b *CommentsPosition) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// MessagesSection groups the rows of one calendar day.
type MessagesSection struct {
	ID   int64 // days since the Unix epoch of Date's calendar day
	Date time.Time
	Rows []MessageRow
}

// Equal reports structural equality.
func (s MessagesSection) Equal(o MessagesSection) bool {
	return s.ID == o.ID && s.Date.Equal(o.Date) && slices.EqualFunc(s.Rows, o.Rows, MessageRow.Equal)
}

// SectionsEqual reports structural equality of two section lists.
func SectionsEqual(a, b []MessagesSection) bool {
	return slices.EqualFunc(a, b, MessagesSection.Equal)
}

// CloneSections deep-copies the section and row slices. Messages are shared.
func CloneSections(in []MessagesSection) []MessagesSection {
	if in == nil {
		return nil
	}
	out := make([]MessagesSection, len(in))
	for i, s := range in {
		out[i] = MessagesSection{ID: s.ID, Date: s.Date, Rows: slices.Clone(s.Rows)}
	}
	return out
}

// DayID returns the epoch day of t's calendar day in t's location.
func DayID(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// LastRow returns the last row of the last non-empty section.
func LastRow(sections []MessagesSection) (MessageRow, bool) {
	for i := len(sections) - 1; i >= 0; i-- {
		if rows := sections[i].Rows; len(rows) > 0 {
			return rows[len(rows)-1], true
		}
	}
	return MessageRow{}, false
}

// RowCount returns the number of rows across all sections.
func RowCount(sections []MessagesSection) int {
	n := 0
	for _, s := range sections {
		n += len(s.Rows)
	}
	return n
}

// Validate checks that row ids are unique across the section list.
func Validate(sections []MessagesSection) error {
	seen := make(map[string]struct{}, RowCount(sections))
	for _, s := range sections {
		for _, r := range s.Rows {
			if _, ok := seen[r.ID]; ok {
				return fmt.Errorf("row %q: %w", r.ID, domain.ErrDuplicateID)
			}
			seen[r.ID] = struct{}{}
		}
	}
	return nil
}
