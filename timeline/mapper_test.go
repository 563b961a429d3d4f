package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/terminalchat/domain"
)

var (
	alice = domain.User{ID: "alice", Name: "Alice"}
	bob   = domain.User{ID: "bob", Name: "Bob", IsCurrentUser: true}
)

func at(day, minute int) time.Time {
	return time.Date(2024, time.March, day, 10, minute, 0, 0, time.UTC)
}

func msg(id string, u domain.User, ts time.Time) domain.Message {
	return domain.Message{ID: id, User: u, CreatedAt: ts, Text: id, Type: domain.TypeText, Status: domain.StatusSent}
}

func ids(rows []MessageRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestMapEmpty(t *testing.T) {
	require.Nil(t, Map(nil, domain.ChatConversation, domain.ReplyQuote, time.UTC))
}

func TestMapConversationNewestFirst(t *testing.T) {
	messages := []domain.Message{
		msg("c", alice, at(2, 0)),
		msg("a", alice, at(1, 0)),
		msg("b", bob, at(1, 5)),
	}

	sections := Map(messages, domain.ChatConversation, domain.ReplyQuote, time.UTC)

	require.Len(t, sections, 2)
	require.Equal(t, DayID(at(2, 0)), sections[0].ID)
	require.Equal(t, DayID(at(1, 0)), sections[1].ID)
	require.Equal(t, []string{"c"}, ids(sections[0].Rows))
	require.Equal(t, []string{"b", "a"}, ids(sections[1].Rows))
	require.True(t, sections[1].Date.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMapCommentsOldestFirst(t *testing.T) {
	messages := []domain.Message{
		msg("c", alice, at(2, 0)),
		msg("a", alice, at(1, 0)),
		msg("b", bob, at(1, 5)),
	}

	sections := Map(messages, domain.ChatComments, domain.ReplyQuote, time.UTC)

	require.Len(t, sections, 2)
	require.Equal(t, []string{"a", "b"}, ids(sections[0].Rows))
	require.Equal(t, []string{"c"}, ids(sections[1].Rows))
}

func TestMapUserGroupPositions(t *testing.T) {
	status := msg("s", alice, at(1, 3))
	status.Type = domain.TypeStatus
	messages := []domain.Message{
		msg("a1", alice, at(1, 0)),
		msg("a2", alice, at(1, 1)),
		msg("a3", alice, at(1, 2)),
		status,
		msg("a4", alice, at(1, 4)),
		msg("b1", bob, at(1, 5)),
		msg("b2", bob, at(1, 6)),
	}

	sections := Map(messages, domain.ChatComments, domain.ReplyQuote, time.UTC)
	require.Len(t, sections, 1)

	got := map[string]Position{}
	for _, r := range sections[0].Rows {
		got[r.ID] = r.PositionInUserGroup
	}
	require.Equal(t, map[string]Position{
		"a1": PositionFirst,
		"a2": PositionMiddle,
		"a3": PositionLast,
		"s":  PositionSingle,
		"a4": PositionSingle,
		"b1": PositionFirst,
		"b2": PositionLast,
	}, got)

	rows := sections[0].Rows
	require.Equal(t, PositionFirst, rows[0].PositionInMessagesSection)
	require.Equal(t, PositionMiddle, rows[3].PositionInMessagesSection)
	require.Equal(t, PositionLast, rows[len(rows)-1].PositionInMessagesSection)
	require.Nil(t, rows[0].PositionInCommentsGroup)
}

func TestMapConversationMirrorsLabelsInIndexOrder(t *testing.T) {
	messages := []domain.Message{
		msg("a1", alice, at(1, 0)),
		msg("a2", alice, at(1, 1)),
	}

	rows := Map(messages, domain.ChatConversation, domain.ReplyQuote, time.UTC)[0].Rows

	require.Equal(t, []string{"a2", "a1"}, ids(rows))
	require.Equal(t, PositionLast, rows[0].PositionInUserGroup)
	require.Equal(t, PositionFirst, rows[1].PositionInUserGroup)
}

func TestMapGroupBreaksOnDayBoundary(t *testing.T) {
	messages := []domain.Message{
		msg("a1", alice, at(1, 0)),
		msg("a2", alice, at(2, 0)),
	}

	sections := Map(messages, domain.ChatComments, domain.ReplyQuote, time.UTC)

	require.Len(t, sections, 2)
	require.Equal(t, PositionSingle, sections[0].Rows[0].PositionInUserGroup)
	require.Equal(t, PositionSingle, sections[1].Rows[0].PositionInUserGroup)
	require.Equal(t, PositionSingle, sections[1].Rows[0].PositionInMessagesSection)
}

func TestMapUsesLocation(t *testing.T) {
	loc := time.FixedZone("east", 3*60*60)
	late := time.Date(2024, time.March, 1, 22, 30, 0, 0, time.UTC)

	sections := Map([]domain.Message{msg("a", alice, late)}, domain.ChatComments, domain.ReplyQuote, loc)

	require.Equal(t, DayID(time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)), sections[0].ID)
	require.Equal(t, loc, sections[0].Date.Location())
}

func TestMapAnswerModePlacesAnswersUnderParent(t *testing.T) {
	root := msg("root", alice, at(1, 0))
	other := msg("other", bob, at(1, 5))
	answer := msg("answer", bob, at(2, 0))
	answer.ReplyMessage = root.ToReplyMessage()
	nested := msg("nested", alice, at(2, 1))
	nested.ReplyMessage = answer.ToReplyMessage()
	orphan := msg("orphan", bob, at(2, 2))
	orphan.ReplyMessage = &domain.ReplyMessage{ID: "missing"}

	sections := Map([]domain.Message{nested, orphan, other, answer, root}, domain.ChatComments, domain.ReplyAnswer, time.UTC)

	require.Len(t, sections, 2)
	require.Equal(t, []string{"root", "answer", "nested", "other"}, ids(sections[0].Rows))
	require.Equal(t, []string{"orphan"}, ids(sections[1].Rows))

	rows := sections[0].Rows
	require.Equal(t, &CommentsPosition{ParentID: "root", Position: PositionFirst}, rows[0].PositionInCommentsGroup)
	require.Equal(t, &CommentsPosition{ParentID: "root", Position: PositionMiddle}, rows[1].PositionInCommentsGroup)
	require.Equal(t, &CommentsPosition{ParentID: "root", Position: PositionLast}, rows[2].PositionInCommentsGroup)
	require.Equal(t, &CommentsPosition{ParentID: "other", Position: PositionSingle}, rows[3].PositionInCommentsGroup)
	require.Equal(t, &CommentsPosition{ParentID: "orphan", Position: PositionSingle, IsLastInChat: true},
		sections[1].Rows[0].PositionInCommentsGroup)
}

func TestMapAnswerModeSurvivesReplyCycle(t *testing.T) {
	a := msg("a", alice, at(1, 0))
	b := msg("b", bob, at(1, 1))
	a.ReplyMessage = &domain.ReplyMessage{ID: "b"}
	b.ReplyMessage = &domain.ReplyMessage{ID: "a"}

	sections := Map([]domain.Message{a, b}, domain.ChatComments, domain.ReplyAnswer, time.UTC)

	require.Equal(t, 2, RowCount(sections))
}

func TestMapIsDeterministic(t *testing.T) {
	messages := []domain.Message{
		msg("a", alice, at(1, 0)),
		msg("b", alice, at(1, 0)),
		msg("c", bob, at(3, 0)),
	}
	first := Map(messages, domain.ChatConversation, domain.ReplyQuote, time.UTC)
	second := Map(messages, domain.ChatConversation, domain.ReplyQuote, time.UTC)
	require.True(t, SectionsEqual(first, second))
}

func TestValidateDetectsDuplicates(t *testing.T) {
	sections := Map([]domain.Message{
		msg("a", alice, at(1, 0)),
		msg("a", bob, at(2, 0)),
	}, domain.ChatComments, domain.ReplyQuote, time.UTC)

	err := Validate(sections)
	require.ErrorIs(t, err, domain.ErrDuplicateID)
	require.Contains(t, err.Error(), `"a"`)

	require.NoError(t, Validate(sections[:1]))
}

func TestLastRow(t *testing.T) {
	_, ok := LastRow(nil)
	require.False(t, ok)

	sections := []MessagesSection{
		{ID: 1, Rows: []MessageRow{{ID: "x"}}},
		{ID: 2},
	}
	row, ok := LastRow(sections)
	require.True(t, ok)
	require.Equal(t, "x", row.ID)
}
