// Package readtracker turns row visibility into read receipts.
package readtracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CrestNiraj12/terminalchat/app"
)

const (
	DefaultDebounce   = time.Second
	DefaultMinVisible = 500 * time.Millisecond
)

type visibleRow struct {
	createdAt time.Time
	since     time.Time
}

// Tracker implements app.ReadTracker. After visibility settles for the
// debounce interval it reports the newest message that has stayed on screen
// for at least minVisible, once per new maximum.
type Tracker struct {
	reporter   app.ReadReporter
	debounce   time.Duration
	minVisible time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu           sync.Mutex
	visible      map[string]visibleRow
	lastReported time.Time
	lastID       string
	timer        *time.Timer
}

func New(reporter app.ReadReporter, debounce, minVisible time.Duration, logger *zap.Logger) *Tracker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if minVisible < 0 {
		minVisible = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		reporter:   reporter,
		debounce:   debounce,
		minVisible: minVisible,
		logger:     logger,
		now:        time.Now,
		visible:    make(map[string]visibleRow),
	}
}

func (t *Tracker) MessageDidAppear(id string, createdAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.visible[id]; ok {
		return
	}
	t.visible[id] = visibleRow{createdAt: createdAt, since: t.now()}
	t.scheduleLocked(t.debounce)
}

func (t *Tracker) MessageDidDisappear(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.visible, id)
}

// ForceUpdate reports the newest visible message now, ignoring the debounce
// and the minimum visibility.
func (t *Tracker) ForceUpdate() {
	t.mu.Lock()
	t.stopLocked()
	id, ok := t.candidateLocked(true)
	t.mu.Unlock()
	if ok {
		t.report(id)
	}
}

// Reset forgets visibility and the reported maximum, e.g. after switching
// chats.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	clear(t.visible)
	t.lastReported = time.Time{}
	t.lastID = ""
}

// LastReported returns the id of the last reported message.
func (t *Tracker) LastReported() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastID
}

func (t *Tracker) scheduleLocked(d time.Duration) {
	t.stopLocked()
	t.timer = time.AfterFunc(d, t.flush)
}

func (t *Tracker) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker) flush() {
	t.mu.Lock()
	t.stopLocked()
	id, ok := t.candidateLocked(false)
	if wait := t.pendingLocked(); wait > 0 {
		t.scheduleLocked(wait)
	}
	t.mu.Unlock()
	if ok {
		t.report(id)
	}
}

// candidateLocked picks the newest eligible row and claims it as reported.
func (t *Tracker) candidateLocked(force bool) (string, bool) {
	now := t.now()
	var (
		bestID string
		best   time.Time
	)
	for id, row := range t.visible {
		if !force && now.Sub(row.since) < t.minVisible {
			continue
		}
		if bestID == "" || row.createdAt.After(best) || (row.createdAt.Equal(best) && id > bestID) {
			bestID, best = id, row.createdAt
		}
	}
	if bestID == "" || !best.After(t.lastReported) {
		return "", false
	}
	t.lastReported = best
	t.lastID = bestID
	return bestID, true
}

// pendingLocked returns how long until a newer row than the reported
// maximum becomes eligible, or 0 when there is none.
func (t *Tracker) pendingLocked() time.Duration {
	now := t.now()
	var wait time.Duration
	for _, row := range t.visible {
		if !row.createdAt.After(t.lastReported) {
			continue
		}
		left := t.minVisible - now.Sub(row.since)
		if left > 0 && (wait == 0 || left < wait) {
			wait = left
		}
	}
	return wait
}

func (t *Tracker) report(id string) {
	if t.reporter == nil {
		return
	}
	if err := t.reporter.MarkRead(context.Background(), id); err != nil {
		t.logger.Warn("mark read failed", zap.String("id", id), zap.Error(err))
		return
	}
	t.logger.Debug("marked read", zap.String("id", id))
}
