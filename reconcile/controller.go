package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CrestNiraj12/terminalchat/app"
	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/listview"
	"github.com/CrestNiraj12/terminalchat/timeline"
)

// Options configures a Controller.
type Options struct {
	ChatType     domain.ChatType
	Location     *time.Location
	InsertPolicy InsertPolicy
	Debounce     time.Duration
	MaxWait      time.Duration
	// Layout supplies the row measure and header height. Header placement and
	// edge pinning follow the chat type.
	Layout listview.Options
}

// Deps holds the collaborators. Only Executor is required.
type Deps struct {
	Executor   Executor
	Pagination app.PaginationHandler
	Reads      app.ReadTracker
	Logger     *zap.Logger
}

// Controller owns the list and the last applied sections. Updates may come
// from any goroutine; they are mapped and diffed off the list's goroutine and
// applied on it through the Executor. Scroll methods and List must be called
// on the list's goroutine.
type Controller struct {
	exec       Executor
	pagination app.PaginationHandler
	reads      app.ReadTracker
	logger     *zap.Logger
	loc        *time.Location
	layout     listview.Options

	list      *listview.List
	snapshot  *Snapshot
	scheduler *Scheduler
	queue     *UpdateQueue

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	target     []timeline.MessagesSection
	targetType domain.ChatType
	version    uint64

	// Owned by the list's goroutine.
	chatType         domain.ChatType
	applied          uint64
	deferred         bool
	paginationTarget string
}

func NewController(opts Options, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exec := deps.Executor
	if exec == nil {
		exec = Inline
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		exec:       exec,
		pagination: deps.Pagination,
		reads:      deps.Reads,
		logger:     logger,
		loc:        loc,
		layout:     opts.Layout,
		snapshot:   &Snapshot{},
		queue:      NewUpdateQueue(opts.Debounce, opts.MaxWait, logger),
		ctx:        ctx,
		cancel:     cancel,
		targetType: opts.ChatType,
		chatType:   opts.ChatType,
	}
	c.list = listview.New(c.snapshot, c, layoutFor(opts.ChatType, opts.Layout))
	c.scheduler = NewScheduler(c.list, c.snapshot, opts.InsertPolicy, liveEdgeOf(opts.ChatType), logger)
	return c
}

func layoutFor(chatType domain.ChatType, base listview.Options) listview.Options {
	conversation := chatType == domain.ChatConversation
	base.HeaderAfterRows = conversation
	base.PinLeading = conversation
	return base
}

// liveEdgeOf returns the end of the list where new messages appear.
func liveEdgeOf(chatType domain.ChatType) listview.Edge {
	if chatType == domain.ChatConversation {
		return listview.EdgeLeading
	}
	return listview.EdgeTrailing
}

// Run consumes queued updates until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer c.cancel()
	return c.queue.Run(ctx)
}

// Flush applies pending updates without waiting for the debounce.
func (c *Controller) Flush() { c.queue.Flush() }

// UpdateSections maps messages into sections and schedules a reconcile.
func (c *Controller) UpdateSections(messages []domain.Message, chatType domain.ChatType, replyMode domain.ReplyMode) {
	sections := timeline.Map(messages, chatType, replyMode, c.loc)
	if err := timeline.Validate(sections); err != nil {
		c.logger.Warn("update has duplicate message ids, first occurrence wins", zap.Error(err))
	}
	c.submit(sections, chatType)
}

// Apply schedules a reconcile to already mapped sections of the current chat
// type.
func (c *Controller) Apply(sections []timeline.MessagesSection) {
	c.mu.Lock()
	chatType := c.targetType
	c.mu.Unlock()
	c.submit(sections, chatType)
}

func (c *Controller) submit(sections []timeline.MessagesSection, chatType domain.ChatType) {
	c.mu.Lock()
	c.version++
	c.target = sections
	c.targetType = chatType
	c.mu.Unlock()
	c.queue.Enqueue(c.reconcile)
}

func (c *Controller) reconcile(ctx context.Context) {
	c.mu.Lock()
	target, chatType, version := c.target, c.targetType, c.version
	c.mu.Unlock()

	var (
		current []timeline.MessagesSection
		skip    bool
		reload  bool
	)
	err := c.exec.Do(ctx, func() {
		current = c.snapshot.Sections()
		skip = version == c.applied
		reload = len(current) == 0 || chatType != c.chatType
	})
	if err != nil || skip {
		return
	}

	if reload {
		_ = c.exec.Do(ctx, func() { c.reload(target, chatType, version) })
		return
	}

	split := timeline.Diff(current, target)
	c.logger.Debug("diff computed",
		zap.Uint64("version", version),
		zap.Int("deletes", len(split.DeleteOperations)),
		zap.Int("swaps", len(split.SwapOperations)),
		zap.Int("edits", len(split.EditOperations)),
		zap.Int("inserts", len(split.InsertOperations)))
	_ = c.exec.Do(ctx, func() { c.apply(split, target, version) })
}

// reload shows target without diffing. Runs on the list's goroutine.
func (c *Controller) reload(target []timeline.MessagesSection, chatType domain.ChatType, version uint64) {
	if chatType != c.chatType {
		c.chatType = chatType
		c.list.SetLayout(layoutFor(chatType, c.layout))
		c.scheduler.liveEdge = liveEdgeOf(chatType)
	}
	c.paginationTarget = lastRowID(target)
	c.snapshot.set(target)
	c.list.ReloadData()
	c.list.ScrollToEdge(c.LiveEdge())
	c.applied = version
	c.deferred = false
}

// apply runs the scheduler. Runs on the list's goroutine.
func (c *Controller) apply(split timeline.SplitInfo, target []timeline.MessagesSection, version uint64) {
	pinned := c.list.IsAtEdge(c.LiveEdge())
	c.paginationTarget = lastRowID(target)

	res, err := c.scheduler.Apply(split, target)
	switch {
	case err != nil:
		c.logger.Error("list update failed, reloading", zap.Uint64("version", version), zap.Error(err))
		c.snapshot.set(target)
		c.list.ReloadData()
		c.applied = version
		c.deferred = false
	case res.Deferred:
		c.deferred = true
	default:
		c.applied = version
		c.deferred = false
	}
	if pinned && !c.deferred {
		c.list.ScrollToEdge(c.LiveEdge())
	}
}

func lastRowID(sections []timeline.MessagesSection) string {
	row, ok := timeline.LastRow(sections)
	if !ok {
		return ""
	}
	return row.ID
}

// resyncIfAllowed re-runs a reconcile whose inserts were held back once the
// list reaches an edge.
func (c *Controller) resyncIfAllowed() {
	if !c.deferred || !c.scheduler.InsertsAllowed() {
		return
	}
	c.deferred = false
	c.queue.EnqueueUrgent(c.reconcile)
}

// List returns the managed list for rendering.
func (c *Controller) List() *listview.List { return c.list }

// LiveEdge is the end of the list where new messages appear.
func (c *Controller) LiveEdge() listview.Edge { return liveEdgeOf(c.chatType) }

// HasDeferredInserts reports whether newer rows are waiting for the list to
// reach an edge.
func (c *Controller) HasDeferredInserts() bool { return c.deferred }

// ScrollToEdge scrolls to the live edge. Terminal scrolling is never
// animated.
func (c *Controller) ScrollToEdge(animated bool) {
	c.list.ScrollToEdge(c.LiveEdge())
	c.resyncIfAllowed()
}

// ScrollToMessage brings the row of id into view. A missing id is a no-op.
func (c *Controller) ScrollToMessage(id string, animated bool) bool {
	ip, ok := c.list.IndexPathOf(id)
	if !ok {
		c.logger.Debug("scroll target not loaded", zap.String("id", id))
		return false
	}
	c.list.ScrollTo(ip)
	c.resyncIfAllowed()
	return true
}

// Scroll moves the viewport delta lines away from the leading edge.
func (c *Controller) Scroll(delta int) {
	c.list.ScrollBy(delta)
	c.resyncIfAllowed()
}

// SetViewport resizes the viewport.
func (c *Controller) SetViewport(height int) {
	c.list.SetViewportHeight(height)
	c.resyncIfAllowed()
}

// WillDisplay implements listview.Observer.
func (c *Controller) WillDisplay(_ listview.IndexPath, row timeline.MessageRow) {
	if c.reads != nil {
		c.reads.MessageDidAppear(row.ID, row.Message.CreatedAt)
	}
	if c.pagination == nil || row.ID == "" || row.ID != c.paginationTarget {
		return
	}
	last := row.Message
	go func() {
		if err := c.pagination.Paginate(c.ctx, last); err != nil {
			c.logger.Warn("pagination failed", zap.String("id", last.ID), zap.Error(err))
		}
	}()
}

// DidEndDisplaying implements listview.Observer.
func (c *Controller) DidEndDisplaying(row timeline.MessageRow) {
	if c.reads != nil {
		c.reads.MessageDidDisappear(row.ID)
	}
}
