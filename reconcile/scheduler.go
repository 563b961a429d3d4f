// Package reconcile keeps a listview.List in sync with an immutably replaced
// section list: a coalescing queue serializes updates, the scheduler applies
// each diff in four ordered batches, and the Controller wires both to the
// pagination and read-tracking collaborators.
package reconcile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/CrestNiraj12/terminalchat/listview"
	"github.com/CrestNiraj12/terminalchat/timeline"
)

// Snapshot is the data source the list reads while batches are applied. It is
// only touched on the goroutine that owns the list.
type Snapshot struct {
	sections []timeline.MessagesSection
}

func (s *Snapshot) Sections() []timeline.MessagesSection { return s.sections }

func (s *Snapshot) set(sections []timeline.MessagesSection) { s.sections = sections }

// InsertPolicy decides when the insert phase may run.
type InsertPolicy int

const (
	// InsertAtAnyEdge applies inserts while the list touches either end.
	InsertAtAnyEdge InsertPolicy = iota
	// InsertAtLiveEdge applies inserts only while the newest end is visible.
	InsertAtLiveEdge
	// InsertAlways never defers inserts.
	InsertAlways
)

func (p InsertPolicy) String() string {
	switch p {
	case InsertAtLiveEdge:
		return "live_edge"
	case InsertAlways:
		return "always"
	default:
		return "any_edge"
	}
}

// ParseInsertPolicy parses "any_edge", "live_edge" or "always".
func ParseInsertPolicy(s string) (InsertPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any_edge":
		return InsertAtAnyEdge, nil
	case "live_edge":
		return InsertAtLiveEdge, nil
	case "always":
		return InsertAlways, nil
	default:
		return 0, fmt.Errorf("unknown insert policy %q", s)
	}
}

// Result describes one Apply.
type Result struct {
	// Deferred is set when the insert phase was held back by the policy. The
	// snapshot then still holds AfterDeletesSwapsAndEdits.
	Deferred bool
	// Batches counts the list batches that ran.
	Batches int
}

// Scheduler applies a SplitInfo to a list in four ordered phases.
type Scheduler struct {
	list     *listview.List
	snapshot *Snapshot
	policy   InsertPolicy
	liveEdge listview.Edge
	logger   *zap.Logger
}

func NewScheduler(list *listview.List, snapshot *Snapshot, policy InsertPolicy, liveEdge listview.Edge, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{list: list, snapshot: snapshot, policy: policy, liveEdge: liveEdge, logger: logger}
}

// InsertsAllowed reports whether the policy lets inserts land right now.
func (s *Scheduler) InsertsAllowed() bool {
	switch s.policy {
	case InsertAlways:
		return true
	case InsertAtLiveEdge:
		return s.list.IsAtEdge(s.liveEdge)
	default:
		return s.list.IsAtEdge(listview.EdgeLeading) || s.list.IsAtEdge(listview.EdgeTrailing)
	}
}

// Apply runs deletes, swaps, edits and inserts as separate batches, moving
// the snapshot forward before each one. It must run on the list's goroutine.
// The first failing batch stops the apply; the list has then already reloaded
// itself from the snapshot of that phase.
func (s *Scheduler) Apply(split timeline.SplitInfo, target []timeline.MessagesSection) (Result, error) {
	var res Result

	s.snapshot.set(split.AfterDeletes)
	if len(split.DeleteOperations) > 0 {
		res.Batches++
		err := s.list.PerformBatch(true, func(b *listview.Batch) {
			for _, op := range split.DeleteOperations {
				if op.Kind == timeline.OpDeleteSection {
					b.DeleteSections(op.Section)
				} else {
					b.DeleteRows(listview.IndexPath{Section: op.Section, Row: op.Row})
				}
			}
		})
		if err != nil {
			return res, fmt.Errorf("delete phase: %w", err)
		}
	}

	s.snapshot.set(split.AfterDeletesSwapsAndEdits)
	if len(split.SwapOperations) > 0 {
		res.Batches++
		err := s.list.PerformBatch(true, func(b *listview.Batch) {
			for _, op := range split.SwapOperations {
				b.MoveRow(
					listview.IndexPath{Section: op.Section, Row: op.Row},
					listview.IndexPath{Section: op.Section, Row: op.To},
				)
			}
		})
		if err != nil {
			return res, fmt.Errorf("swap phase: %w", err)
		}
	}

	if len(split.EditOperations) > 0 {
		animated := false
		for _, op := range split.EditOperations {
			animated = animated || op.ContentChanged
		}
		res.Batches++
		err := s.list.PerformBatch(animated, func(b *listview.Batch) {
			for _, op := range split.EditOperations {
				ip := listview.IndexPath{Section: op.Section, Row: op.Row}
				if op.ContentChanged {
					b.ReloadRows(ip)
				} else {
					b.ReconfigureRows(ip)
				}
			}
		})
		if err != nil {
			return res, fmt.Errorf("edit phase: %w", err)
		}
	}

	if len(split.InsertOperations) == 0 {
		s.snapshot.set(target)
		return res, nil
	}
	if !s.InsertsAllowed() {
		s.logger.Debug("inserts deferred until the list reaches an edge",
			zap.Int("inserts", len(split.InsertOperations)))
		res.Deferred = true
		return res, nil
	}

	s.snapshot.set(target)
	res.Batches++
	err := s.list.PerformBatch(true, func(b *listview.Batch) {
		for _, op := range split.InsertOperations {
			if op.Kind == timeline.OpInsertSection {
				b.InsertSections(op.Section)
			} else {
				b.InsertRows(listview.IndexPath{Section: op.Section, Row: op.Row})
			}
		}
	})
	if err != nil {
		return res, fmt.Errorf("insert phase: %w", err)
	}
	return res, nil
}
