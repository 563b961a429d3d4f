package reconcile

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/listview"
)

type fakePagination struct {
	calls chan string
}

func (p *fakePagination) Paginate(_ context.Context, last domain.Message) error {
	p.calls <- last.ID
	return nil
}

func (p *fakePagination) PageSize() int { return 20 }

type fakeReads struct {
	mu          sync.Mutex
	appeared    []string
	disappeared []string
}

func (r *fakeReads) MessageDidAppear(id string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appeared = append(r.appeared, id)
}

func (r *fakeReads) MessageDidDisappear(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disappeared = append(r.disappeared, id)
}

func (r *fakeReads) seen() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.appeared), slices.Clone(r.disappeared)
}

type harness struct {
	t    *testing.T
	c    *Controller
	loop *Loop
}

func startController(t *testing.T, chatType domain.ChatType, deps Deps) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(ctx)
	deps.Executor = loop
	c := NewController(Options{
		ChatType: chatType,
		Location: time.UTC,
		Debounce: time.Millisecond,
		MaxWait:  5 * time.Millisecond,
	}, deps)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &harness{t: t, c: c, loop: loop}
}

// do runs fn on the list's goroutine.
func (h *harness) do(fn func()) {
	h.t.Helper()
	require.NoError(h.t, h.loop.Do(context.Background(), fn))
}

func (h *harness) ids() []string {
	var out []string
	h.do(func() { out = listIDs(h.c.List()) })
	return out
}

func (h *harness) waitFor(want []string) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return slices.Equal(want, h.ids())
	}, time.Second, 2*time.Millisecond)
}

func history(n int) []domain.Message {
	var out []domain.Message
	for i := 0; i < n; i++ {
		out = append(out, msg(string(rune('a'+i)), alice, at(1, i)))
	}
	return out
}

func TestControllerInitialLoadReloadsAtLiveEdge(t *testing.T) {
	h := startController(t, domain.ChatConversation, Deps{})
	h.do(func() { h.c.SetViewport(2) })

	h.c.UpdateSections(history(5), domain.ChatConversation, domain.ReplyQuote)
	h.waitFor([]string{"e", "d", "c", "b", "a"})

	h.do(func() {
		require.True(t, h.c.List().IsAtEdge(listview.EdgeLeading))
		require.True(t, h.c.List().IsVisible("e"))
		require.False(t, h.c.List().IsVisible("a"))
	})
}

func TestControllerPaginatesWhenLastRowAppears(t *testing.T) {
	pages := &fakePagination{calls: make(chan string, 4)}
	h := startController(t, domain.ChatConversation, Deps{Pagination: pages})
	h.do(func() { h.c.SetViewport(2) })

	h.c.UpdateSections(history(5), domain.ChatConversation, domain.ReplyQuote)
	h.waitFor([]string{"e", "d", "c", "b", "a"})
	select {
	case id := <-pages.calls:
		t.Fatalf("paginated before the oldest row was shown: %s", id)
	default:
	}

	h.do(func() { h.c.Scroll(100) })
	select {
	case id := <-pages.calls:
		require.Equal(t, "a", id)
	case <-time.After(time.Second):
		t.Fatal("pagination was not triggered")
	}
}

func TestControllerReportsDisplayToReadTracker(t *testing.T) {
	reads := &fakeReads{}
	h := startController(t, domain.ChatConversation, Deps{Reads: reads})
	h.do(func() { h.c.SetViewport(10) })

	h.c.UpdateSections(history(3), domain.ChatConversation, domain.ReplyQuote)
	h.waitFor([]string{"c", "b", "a"})

	appeared, _ := reads.seen()
	require.ElementsMatch(t, []string{"a", "b", "c"}, appeared)

	h.do(func() { h.c.SetViewport(1) })
	_, disappeared := reads.seen()
	require.ElementsMatch(t, []string{"a", "b"}, disappeared)
}

func TestControllerScrollToMissingMessage(t *testing.T) {
	h := startController(t, domain.ChatConversation, Deps{})
	h.do(func() { h.c.SetViewport(2) })
	h.c.UpdateSections(history(5), domain.ChatConversation, domain.ReplyQuote)
	h.waitFor([]string{"e", "d", "c", "b", "a"})

	h.do(func() {
		require.False(t, h.c.ScrollToMessage("zzz", false))
		require.Zero(t, h.c.List().Offset())

		require.True(t, h.c.ScrollToMessage("a", false))
		require.True(t, h.c.List().IsVisible("a"))
	})
}

func TestControllerDefersInsertsUntilEdge(t *testing.T) {
	h := startController(t, domain.ChatConversation, Deps{})
	h.do(func() { h.c.SetViewport(4) })

	messages := history(10)
	h.c.UpdateSections(messages, domain.ChatConversation, domain.ReplyQuote)
	initial := []string{"j", "i", "h", "g", "f", "e", "d", "c", "b", "a"}
	h.waitFor(initial)
	h.do(func() { h.c.Scroll(3) })

	h.c.UpdateSections(append(messages, msg("new", bob, at(1, 30))), domain.ChatConversation, domain.ReplyQuote)
	require.Eventually(t, func() bool {
		var deferred bool
		h.do(func() { deferred = h.c.HasDeferredInserts() })
		return deferred
	}, time.Second, 2*time.Millisecond)
	require.Equal(t, initial, h.ids())

	h.do(func() { h.c.ScrollToEdge(false) })
	h.waitFor(append([]string{"new"}, initial...))
	h.do(func() {
		require.False(t, h.c.HasDeferredInserts())
		require.True(t, h.c.List().IsVisible("new"))
	})
}

func TestControllerFollowsLiveEdgeWhenPinned(t *testing.T) {
	h := startController(t, domain.ChatComments, Deps{})
	h.do(func() { h.c.SetViewport(3) })

	messages := history(6)
	h.c.UpdateSections(messages, domain.ChatComments, domain.ReplyQuote)
	h.waitFor([]string{"a", "b", "c", "d", "e", "f"})
	h.do(func() { require.True(t, h.c.List().IsAtEdge(listview.EdgeTrailing)) })

	h.c.UpdateSections(append(messages, msg("g", bob, at(1, 30))), domain.ChatComments, domain.ReplyQuote)
	h.waitFor([]string{"a", "b", "c", "d", "e", "f", "g"})
	h.do(func() {
		require.True(t, h.c.List().IsAtEdge(listview.EdgeTrailing))
		require.True(t, h.c.List().IsVisible("g"))
	})
}

func TestControllerSwitchingChatTypeReloads(t *testing.T) {
	h := startController(t, domain.ChatConversation, Deps{})
	h.do(func() { h.c.SetViewport(10) })

	messages := history(3)
	h.c.UpdateSections(messages, domain.ChatConversation, domain.ReplyQuote)
	h.waitFor([]string{"c", "b", "a"})

	h.c.UpdateSections(messages, domain.ChatComments, domain.ReplyQuote)
	h.waitFor([]string{"a", "b", "c"})
	h.do(func() { require.Equal(t, listview.EdgeTrailing, h.c.LiveEdge()) })
}
