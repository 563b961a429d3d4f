package transcript

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// Options configures a Service. Zero delays deliver immediately.
type Options struct {
	ChatType  domain.ChatType
	PageSize  int
	PageDelay time.Duration // simulated latency of a history page
	SendDelay time.Duration // sending to sent, and reaction delivery
	ReadDelay time.Duration // sent to read by the other side
	Now       func() time.Time
	Logger    *zap.Logger
}

// Service is an in-memory chat backend over a Transcript. It pages stored
// history, plays the scripted incoming messages and simulates delivery of
// the current user's messages. It implements app.ChatService,
// app.MessageSource, app.PaginationHandler, app.AccountService and
// app.ReadReporter.
type Service struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time
	me     domain.User
	script []Scripted

	mu       sync.Mutex
	history  []domain.Message
	live     []domain.Message
	lo, hi   int
	chatType domain.ChatType
	loading  bool
	closed   bool
	subs     map[int]func([]domain.Message)
	nextSub  int

	pubMu sync.Mutex
}

func NewService(t Transcript, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		opts:    opts,
		logger:  logger,
		now:     opts.Now,
		me:      t.Me,
		script:  slices.Clone(t.Incoming),
		history: slices.Clone(t.History),
		subs:    make(map[int]func([]domain.Message)),
	}
	s.openLocked(opts.ChatType)
	return s
}

// Open resets the loaded window for chatType: the newest page for a
// conversation, the oldest page for comments.
func (s *Service) Open(chatType domain.ChatType) {
	s.mu.Lock()
	s.openLocked(chatType)
	s.mu.Unlock()
	s.publish()
}

func (s *Service) openLocked(chatType domain.ChatType) {
	s.chatType = chatType
	n := len(s.history)
	if chatType == domain.ChatComments {
		s.lo, s.hi = 0, min(s.opts.PageSize, n)
		return
	}
	s.lo, s.hi = max(n-s.opts.PageSize, 0), n
}

// Run plays the scripted incoming messages until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	}()

	start := s.now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	for _, sc := range s.script {
		timer.Reset(max(sc.After-s.now().Sub(start), 0))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		s.deliver(sc.Message)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *Service) deliver(m domain.Message) {
	s.mu.Lock()
	m.CreatedAt = s.now()
	s.live = append(s.live, m)
	s.mu.Unlock()
	s.logger.Debug("message received", zap.String("id", m.ID), zap.String("user", m.User.ID))
	s.publish()
}

// Messages returns the loaded window of history followed by the messages
// sent or received since the chat opened.
func (s *Service) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked()
}

func (s *Service) messagesLocked() []domain.Message {
	out := make([]domain.Message, 0, s.hi-s.lo+len(s.live))
	out = append(out, s.history[s.lo:s.hi]...)
	return append(out, s.live...)
}

func (s *Service) Subscribe(fn func([]domain.Message)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// publish delivers the current messages to every subscriber. Publications
// never overtake each other.
func (s *Service) publish() {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	msgs := s.messagesLocked()
	subs := make([]func([]domain.Message), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(msgs)
	}
}

func (s *Service) PageSize() int { return s.opts.PageSize }

// HasMore reports whether pagination can load anything.
func (s *Service) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chatType == domain.ChatComments {
		return s.hi < len(s.history)
	}
	return s.lo > 0
}

// Paginate loads the next page of history: older messages for a
// conversation, newer ones for comments. Calls made while a page is loading
// are ignored.
func (s *Service) Paginate(ctx context.Context, last domain.Message) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	if s.opts.PageDelay > 0 {
		timer := time.NewTimer(s.opts.PageDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	s.loading = false
	before := s.hi - s.lo
	if s.chatType == domain.ChatComments {
		s.hi = min(s.hi+s.opts.PageSize, len(s.history))
	} else {
		s.lo = max(s.lo-s.opts.PageSize, 0)
	}
	loaded := s.hi - s.lo - before
	s.mu.Unlock()

	s.logger.Debug("page loaded", zap.String("after", last.ID), zap.Int("messages", loaded))
	if loaded > 0 {
		s.publish()
	}
	return nil
}

func (s *Service) CurrentUser(context.Context) (domain.User, error) { return s.me, nil }

func (s *Service) Send(_ context.Context, draft domain.Draft) (domain.Message, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" && len(draft.Attachments) == 0 && draft.Recording == nil {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	at := draft.CreatedAt
	if at.IsZero() {
		at = s.now()
	}
	m := domain.Message{
		ID:           uuid.NewString(),
		User:         s.me,
		Status:       domain.StatusSending,
		CreatedAt:    at,
		Text:         text,
		Attachments:  slices.Clone(draft.Attachments),
		Recording:    draft.Recording,
		ReplyMessage: draft.ReplyMessage,
		Type:         domain.TypeText,
	}

	s.mu.Lock()
	s.live = append(s.live, m)
	s.mu.Unlock()
	s.publish()

	s.after(s.opts.SendDelay, func() bool { return s.setStatusLocked(m.ID, domain.StatusSent) })
	s.after(s.opts.SendDelay+s.opts.ReadDelay, func() bool { return s.setStatusLocked(m.ID, domain.StatusRead) })
	return m, nil
}

// after runs fn under the lock once d has passed, publishing when fn
// reports a change. Nothing runs once Run has returned.
func (s *Service) after(d time.Duration, fn func() bool) {
	time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		changed := fn()
		s.mu.Unlock()
		if changed {
			s.publish()
		}
	})
}

func (s *Service) setStatusLocked(id string, status domain.Status) bool {
	m, ok := s.findLocked(id)
	if !ok || m.Status >= status || m.IsDeleted {
		return false
	}
	m.Status = status
	return true
}

func (s *Service) findLocked(id string) (*domain.Message, bool) {
	for i := range s.live {
		if s.live[i].ID == id {
			return &s.live[i], true
		}
	}
	for i := range s.history {
		if s.history[i].ID == id {
			return &s.history[i], true
		}
	}
	return nil, false
}

// mutableLocked finds a message that can still be changed. With ownOnly it
// must also belong to the current user.
func (s *Service) mutableLocked(id string, ownOnly bool) (*domain.Message, error) {
	m, ok := s.findLocked(id)
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	if m.IsDeleted || m.Type.IsSystem() || (ownOnly && !m.User.IsCurrentUser) {
		return nil, domain.ErrNotEditable
	}
	return m, nil
}

func (s *Service) Edit(_ context.Context, id string, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrEmptyMessage
	}
	s.mu.Lock()
	m, err := s.mutableLocked(id, true)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	changed := m.Text != text
	m.Text = text
	s.mu.Unlock()
	if changed {
		s.publish()
	}
	return nil
}

func (s *Service) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	m, err := s.mutableLocked(id, true)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	m.IsDeleted = true
	m.Text = ""
	m.Attachments = nil
	m.Recording = nil
	m.Reactions = nil
	s.mu.Unlock()
	s.publish()
	return nil
}

// React toggles the current user's emoji on a message. A new reaction is
// delivered after the send delay.
func (s *Service) React(_ context.Context, id string, emoji string) error {
	if emoji == "" {
		return domain.ErrEmptyMessage
	}
	s.mu.Lock()
	m, err := s.mutableLocked(id, false)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	reactions := slices.Clone(m.Reactions)
	idx := slices.IndexFunc(reactions, func(r domain.Reaction) bool {
		return r.User.ID == s.me.ID && r.Emoji == emoji
	})
	var added string
	if idx >= 0 {
		reactions = slices.Delete(reactions, idx, idx+1)
	} else {
		added = uuid.NewString()
		reactions = append(reactions, domain.Reaction{
			ID:        added,
			User:      s.me,
			CreatedAt: s.now(),
			Emoji:     emoji,
			Status:    domain.ReactionSending,
		})
	}
	m.Reactions = reactions
	s.mu.Unlock()
	s.publish()

	if added != "" {
		s.after(s.opts.SendDelay, func() bool { return s.deliverReactionLocked(id, added) })
	}
	return nil
}

func (s *Service) deliverReactionLocked(messageID, reactionID string) bool {
	m, ok := s.findLocked(messageID)
	if !ok {
		return false
	}
	idx := slices.IndexFunc(m.Reactions, func(r domain.Reaction) bool { return r.ID == reactionID })
	if idx < 0 || m.Reactions[idx].Status != domain.ReactionSending {
		return false
	}
	reactions := slices.Clone(m.Reactions)
	reactions[idx].Status = domain.ReactionSent
	m.Reactions = reactions
	return true
}

// MarkRead marks every received message up to and including id as read.
func (s *Service) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	target, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return domain.ErrMessageNotFound
	}
	upTo := target.CreatedAt
	changed := false
	for _, list := range [][]domain.Message{s.history, s.live} {
		for i := range list {
			m := &list[i]
			if m.User.IsCurrentUser || m.Status != domain.StatusReceived || m.CreatedAt.After(upTo) {
				continue
			}
			m.Status = domain.StatusRead
			changed = true
		}
	}
	s.mu.Unlock()
	if changed {
		s.publish()
	}
	return nil
}

// Unread counts loaded messages from other users that are not read yet.
func (s *Service) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messagesLocked() {
		if !m.User.IsCurrentUser && m.Status == domain.StatusReceived {
			n++
		}
	}
	return n
}
