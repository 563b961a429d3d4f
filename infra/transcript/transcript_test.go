package transcript

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/terminalchat/domain"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

const small = `
me: me
users:
  - id: me
    name: You
  - id: ana
history:
  - id: m1
    user: ana
    ago: 48h
    text: first
  - id: m2
    user: me
    ago: 47h
    reply_to: m1
    text: second
  - id: m3
    user: ana
    at: 2024-05-09T10:00:00Z
    text: third
    status: received
    reactions:
      - user: me
        emoji: "👍"
  - id: m4
    user: ana
    ago: 1h
    type: status
    text: Ana renamed the chat
  - id: m5
    user: me
    ago: 10m
    text: fifth
incoming:
  - user: ana
    after: 20ms
    text: later
  - user: ana
    after: 5ms
    text: sooner
`

func parseSmall(t *testing.T) Transcript {
	t.Helper()
	tr, err := Parse([]byte(small), "", now)
	require.NoError(t, err)
	return tr
}

func ids(msgs []domain.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestParse(t *testing.T) {
	tr := parseSmall(t)

	require.Equal(t, "me", tr.Me.ID)
	require.True(t, tr.Me.IsCurrentUser)
	require.Equal(t, "ana", tr.Users["ana"].Name, "name defaults to id")
	require.False(t, tr.Users["ana"].IsCurrentUser)

	require.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, ids(tr.History))
	require.Equal(t, now.Add(-48*time.Hour), tr.History[0].CreatedAt)
	require.Equal(t, domain.StatusRead, tr.History[0].Status)
	require.Equal(t, domain.StatusReceived, tr.History[2].Status)
	require.Equal(t, "m1", tr.History[1].ReplyTargetID())
	require.Equal(t, "first", tr.History[1].ReplyMessage.Text)
	require.Len(t, tr.History[2].Reactions, 1)
	require.Equal(t, domain.TypeStatus, tr.History[3].Type)

	require.Len(t, tr.Incoming, 2)
	require.Equal(t, "sooner", tr.Incoming[0].Message.Text)
	require.Equal(t, domain.StatusReceived, tr.Incoming[0].Message.Status)
	require.NotEmpty(t, tr.Incoming[0].Message.ID)
}

func TestParse_CurrentUserOverride(t *testing.T) {
	tr, err := Parse([]byte(small), "ana", now)
	require.NoError(t, err)
	require.Equal(t, "ana", tr.Me.ID)
	require.False(t, tr.Users["me"].IsCurrentUser)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]struct {
		doc    string
		target error
	}{
		"unknown user":    {doc: "me: me\nusers: [{id: me}]\nhistory: [{id: a, user: bob, text: hi}]"},
		"unknown me":      {doc: "me: bob\nusers: [{id: me}]"},
		"missing parent":  {doc: "me: me\nusers: [{id: me}]\nhistory: [{id: a, user: me, text: hi, reply_to: zz}]", target: domain.ErrMessageNotFound},
		"duplicate id":    {doc: "me: me\nusers: [{id: me}]\nhistory: [{id: a, user: me, text: hi}, {id: a, user: me, text: yo}]", target: domain.ErrDuplicateID},
		"empty message":   {doc: "me: me\nusers: [{id: me}]\nhistory: [{id: a, user: me}]", target: domain.ErrEmptyMessage},
		"bad status":      {doc: "me: me\nusers: [{id: me}]\nhistory: [{id: a, user: me, text: hi, status: lost}]"},
		"malformed yaml":  {doc: "me: [me"},
		"user without id": {doc: "me: me\nusers: [{name: Nobody}]"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), "", now)
			require.Error(t, err)
			if tc.target != nil {
				require.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestDemoParses(t *testing.T) {
	tr, err := Demo("", now)
	require.NoError(t, err)
	require.Greater(t, len(tr.History), 40)
	require.NotEmpty(t, tr.Incoming)
	require.Equal(t, "me", tr.Me.ID)
}

func newService(t *testing.T, chatType domain.ChatType, pageSize int) *Service {
	t.Helper()
	return NewService(parseSmall(t), Options{ChatType: chatType, PageSize: pageSize, Now: func() time.Time { return now }})
}

func TestService_PaginatesConversationBackwards(t *testing.T) {
	s := newService(t, domain.ChatConversation, 2)
	require.Equal(t, []string{"m4", "m5"}, ids(s.Messages()))
	require.Equal(t, 2, s.PageSize())

	require.NoError(t, s.Paginate(context.Background(), s.Messages()[0]))
	require.Equal(t, []string{"m2", "m3", "m4", "m5"}, ids(s.Messages()))
	require.True(t, s.HasMore())

	require.NoError(t, s.Paginate(context.Background(), s.Messages()[0]))
	require.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, ids(s.Messages()))
	require.False(t, s.HasMore())
}

func TestService_PaginatesCommentsForwards(t *testing.T) {
	s := newService(t, domain.ChatComments, 3)
	require.Equal(t, []string{"m1", "m2", "m3"}, ids(s.Messages()))

	require.NoError(t, s.Paginate(context.Background(), s.Messages()[2]))
	require.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, ids(s.Messages()))
	require.False(t, s.HasMore())

	s.Open(domain.ChatConversation)
	require.Equal(t, []string{"m3", "m4", "m5"}, ids(s.Messages()))
}

func TestService_PaginateHonoursContext(t *testing.T) {
	s := NewService(parseSmall(t), Options{PageSize: 2, PageDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Paginate(ctx, domain.Message{}), context.Canceled)
	require.Len(t, s.Messages(), 2)
}

type collector struct {
	mu   sync.Mutex
	last []domain.Message
	n    int
}

func (c *collector) receive(msgs []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = msgs
	c.n++
}

func (c *collector) find(id string) (domain.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.last {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Message{}, false
}

func TestService_SendTransitionsStatus(t *testing.T) {
	s := NewService(parseSmall(t), Options{SendDelay: 5 * time.Millisecond, ReadDelay: 5 * time.Millisecond})
	var c collector
	unsubscribe := s.Subscribe(c.receive)
	defer unsubscribe()

	_, err := s.Send(context.Background(), domain.Draft{Text: "   "})
	require.ErrorIs(t, err, domain.ErrEmptyMessage)

	parent := s.Messages()[0]
	m, err := s.Send(context.Background(), domain.Draft{Text: " hello ", ReplyMessage: parent.ToReplyMessage()})
	require.NoError(t, err)
	require.Equal(t, "hello", m.Text)
	require.Equal(t, domain.StatusSending, m.Status)
	require.True(t, m.User.IsCurrentUser)
	require.Equal(t, parent.ID, m.ReplyTargetID())

	got, ok := c.find(m.ID)
	require.True(t, ok, "send publishes immediately")
	require.Equal(t, domain.StatusSending, got.Status)

	require.Eventually(t, func() bool {
		got, _ := c.find(m.ID)
		return got.Status == domain.StatusRead
	}, time.Second, time.Millisecond)
}

func TestService_EditAndDelete(t *testing.T) {
	s := newService(t, domain.ChatConversation, 10)
	ctx := context.Background()

	require.ErrorIs(t, s.Edit(ctx, "nope", "x"), domain.ErrMessageNotFound)
	require.ErrorIs(t, s.Edit(ctx, "m1", "x"), domain.ErrNotEditable, "other user's message")
	require.ErrorIs(t, s.Edit(ctx, "m5", " "), domain.ErrEmptyMessage)

	require.NoError(t, s.Edit(ctx, "m5", "fifth, edited"))
	require.Equal(t, "fifth, edited", s.Messages()[4].Text)

	require.NoError(t, s.Delete(ctx, "m5"))
	deleted := s.Messages()[4]
	require.True(t, deleted.IsDeleted)
	require.Empty(t, deleted.Text)
	require.ErrorIs(t, s.Edit(ctx, "m5", "again"), domain.ErrNotEditable)
	require.ErrorIs(t, s.Delete(ctx, "m1"), domain.ErrNotEditable)
}

func TestService_ReactToggles(t *testing.T) {
	s := NewService(parseSmall(t), Options{SendDelay: time.Millisecond})
	ctx := context.Background()
	var c collector
	defer s.Subscribe(c.receive)()

	require.NoError(t, s.React(ctx, "m1", "🔥"))
	require.Eventually(t, func() bool {
		m, _ := c.find("m1")
		return len(m.Reactions) == 1 && m.Reactions[0].Status == domain.ReactionSent
	}, time.Second, time.Millisecond)

	require.NoError(t, s.React(ctx, "m1", "🔥"))
	m, _ := c.find("m1")
	require.Empty(t, m.Reactions)

	require.NoError(t, s.React(ctx, "m3", "👍"), "removes the existing reaction")
	m, _ = c.find("m3")
	require.Empty(t, m.Reactions)

	require.ErrorIs(t, s.React(ctx, "m4", "👍"), domain.ErrNotEditable)
	require.ErrorIs(t, s.React(ctx, "m1", ""), domain.ErrEmptyMessage)
}

func TestService_MarkRead(t *testing.T) {
	s := newService(t, domain.ChatConversation, 10)
	require.Equal(t, 1, s.Unread())

	require.ErrorIs(t, s.MarkRead(context.Background(), "zz"), domain.ErrMessageNotFound)
	require.NoError(t, s.MarkRead(context.Background(), "m2"))
	require.Equal(t, 1, s.Unread(), "m3 is newer than m2")

	require.NoError(t, s.MarkRead(context.Background(), "m5"))
	require.Zero(t, s.Unread())
	require.Equal(t, domain.StatusRead, s.Messages()[2].Status)
}

func TestService_RunDeliversScript(t *testing.T) {
	s := NewService(parseSmall(t), Options{PageSize: 10})
	var c collector
	defer s.Subscribe(c.receive)()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return len(s.Messages()) == 7 }, time.Second, time.Millisecond)
	msgs := s.Messages()
	require.Equal(t, "sooner", msgs[5].Text)
	require.Equal(t, "later", msgs[6].Text)
	require.Equal(t, 3, s.Unread())

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
