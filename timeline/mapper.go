package timeline

import (
	"slices"
	"time"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// Map buckets messages into day sections and computes each row's grouping
// metadata. Conversation chats get sections and rows newest first; comments
// chats get them oldest first. A nil loc means time.Local.
//
// Map is pure: identical input always yields identical output.
func Map(messages []domain.Message, chatType domain.ChatType, replyMode domain.ReplyMode, loc *time.Location) []MessagesSection {
	if len(messages) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	chrono := slices.Clone(messages)
	slices.SortStableFunc(chrono, func(a, b domain.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	var days []dayBucket
	if replyMode == domain.ReplyAnswer {
		days = bucketAnswers(chrono, loc)
	} else {
		days = bucketByDay(chrono, loc)
	}

	sections := make([]MessagesSection, 0, len(days))
	for i, day := range days {
		rows := wrapDay(day, replyMode, i == len(days)-1)
		if chatType == domain.ChatConversation {
			slices.Reverse(rows)
		}
		sections = append(sections, MessagesSection{
			ID:   DayID(day.date),
			Date: day.date,
			Rows: rows,
		})
	}
	if chatType == domain.ChatConversation {
		slices.Reverse(sections)
	}
	return sections
}

type dayBucket struct {
	date     time.Time
	messages []domain.Message
	// rootIDs holds, per message, the first-level message its comment run
	// belongs to. Only filled in answer mode.
	rootIDs []string
}

func bucketByDay(chrono []domain.Message, loc *time.Location) []dayBucket {
	var days []dayBucket
	for _, m := range chrono {
		day := StartOfDay(m.CreatedAt.In(loc))
		if n := len(days); n > 0 && days[n-1].date.Equal(day) {
			days[n-1].messages = append(days[n-1].messages, m)
			continue
		}
		days = append(days, dayBucket{date: day, messages: []domain.Message{m}})
	}
	return days
}

// bucketAnswers places every answer directly after its first-level ancestor,
// under the ancestor's day. Answers whose parent is not loaded, and messages
// caught in a reply cycle, are treated as first-level messages.
func bucketAnswers(chrono []domain.Message, loc *time.Location) []dayBucket {
	byID := make(map[string]domain.Message, len(chrono))
	for _, m := range chrono {
		if _, ok := byID[m.ID]; !ok {
			byID[m.ID] = m
		}
	}

	answers := make(map[string][]domain.Message)
	var roots []domain.Message
	for _, m := range chrono {
		root := rootOf(m, byID)
		if root == m.ID {
			roots = append(roots, m)
			continue
		}
		answers[root] = append(answers[root], m)
	}

	var days []dayBucket
	for _, root := range roots {
		day := StartOfDay(root.CreatedAt.In(loc))
		if n := len(days); n == 0 || !days[n-1].date.Equal(day) {
			days = append(days, dayBucket{date: day})
		}
		b := &days[len(days)-1]
		b.messages = append(b.messages, root)
		b.rootIDs = append(b.rootIDs, root.ID)
		for _, a := range answers[root.ID] {
			b.messages = append(b.messages, a)
			b.rootIDs = append(b.rootIDs, root.ID)
		}
	}
	return days
}

func rootOf(m domain.Message, byID map[string]domain.Message) string {
	cur := m
	seen := map[string]struct{}{cur.ID: {}}
	for {
		parentID := cur.ReplyTargetID()
		parent, ok := byID[parentID]
		if parentID == "" || !ok {
			return cur.ID
		}
		if _, loop := seen[parentID]; loop {
			return m.ID
		}
		seen[parentID] = struct{}{}
		cur = parent
	}
}

// wrapDay computes positions over the chronological day. The oldest message
// of a run is its visually topmost row in both layouts.
func wrapDay(day dayBucket, replyMode domain.ReplyMode, lastDay bool) []MessageRow {
	msgs := day.messages
	rows := make([]MessageRow, len(msgs))
	for i, m := range msgs {
		samePrev := i > 0 && sameGroup(msgs[i-1], m)
		sameNext := i < len(msgs)-1 && sameGroup(m, msgs[i+1])

		var group Position
		switch {
		case samePrev && sameNext:
			group = PositionMiddle
		case sameNext:
			group = PositionFirst
		case samePrev:
			group = PositionLast
		default:
			group = PositionSingle
		}

		rows[i] = MessageRow{
			ID:                        m.ID,
			Message:                   m,
			PositionInUserGroup:       group,
			PositionInMessagesSection: positionOf(i, len(msgs)),
		}
	}

	if replyMode == domain.ReplyAnswer {
		labelCommentRuns(rows, day.rootIDs, lastDay)
	}
	return rows
}

func sameGroup(a, b domain.Message) bool {
	if a.Type.IsSystem() || b.Type.IsSystem() {
		return false
	}
	return a.User.ID == b.User.ID
}

func labelCommentRuns(rows []MessageRow, rootIDs []string, lastDay bool) {
	start := 0
	for start < len(rows) {
		end := start + 1
		for end < len(rows) && rootIDs[end] == rootIDs[start] {
			end++
		}
		for i := start; i < end; i++ {
			rows[i].PositionInCommentsGroup = &CommentsPosition{
				ParentID:     rootIDs[start],
				Position:     positionOf(i-start, end-start),
				IsLastInChat: lastDay && i == len(rows)-1,
			}
		}
		start = end
	}
}
