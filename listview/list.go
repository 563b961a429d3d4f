// Package listview is an indexed, section-based list with batch updates, a
// line-based viewport and display notifications. It holds a materialized copy
// of the rows it shows and only re-reads its data source for the positions a
// batch names, so a batch that disagrees with the source is detected instead
// of silently redrawn.
package listview

import (
	"fmt"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/timeline"
)

// IndexPath addresses a row. Row is -1 for a section header.
type IndexPath struct {
	Section int
	Row     int
}

// DataSource supplies the sections the list should be showing.
type DataSource interface {
	Sections() []timeline.MessagesSection
}

// Observer is told when rows enter and leave the viewport, exactly once per
// transition. It must not mutate the list from inside a callback.
type Observer interface {
	WillDisplay(ip IndexPath, row timeline.MessageRow)
	DidEndDisplaying(row timeline.MessageRow)
}

// Edge is one end of the list. Leading holds index 0.
type Edge int

const (
	EdgeLeading Edge = iota
	EdgeTrailing
)

func (e Edge) String() string {
	if e == EdgeTrailing {
		return "trailing"
	}
	return "leading"
}

// Options configures layout.
type Options struct {
	// RowHeight measures a row in lines. Nil means one line per row.
	RowHeight func(timeline.MessageRow) int
	// HeaderHeight is the height of a section header in lines.
	HeaderHeight int
	// HeaderAfterRows places each header after its rows in index order, which
	// is where a date header belongs when rows are newest first.
	HeaderAfterRows bool
	// PinLeading keeps the viewport on the leading edge across batches when
	// it was there before. Otherwise the first visible row stays in place.
	PinLeading bool
}

// List is not safe for concurrent use. All calls must come from the goroutine
// that owns it.
type List struct {
	source   DataSource
	observer Observer
	opts     Options

	sections []timeline.MessagesSection
	offset   int
	height   int

	visible     map[string]IndexPath
	shownOrder  []string
	shownRows   map[string]timeline.MessageRow
	highlighted map[string]struct{}
}

// New creates an empty list. Call ReloadData to show the source's sections.
func New(source DataSource, observer Observer, opts Options) *List {
	if opts.RowHeight == nil {
		opts.RowHeight = func(timeline.MessageRow) int { return 1 }
	}
	return &List{
		source:      source,
		observer:    observer,
		opts:        opts,
		visible:     make(map[string]IndexPath),
		shownRows:   make(map[string]timeline.MessageRow),
		highlighted: make(map[string]struct{}),
	}
}

// SetObserver replaces the display observer.
func (l *List) SetObserver(o Observer) { l.observer = o }

// SetRowHeight replaces the row measure, e.g. after a width change.
func (l *List) SetRowHeight(fn func(timeline.MessageRow) int) {
	if fn == nil {
		fn = func(timeline.MessageRow) int { return 1 }
	}
	anchor := l.captureAnchor()
	l.opts.RowHeight = fn
	l.restoreAnchor(anchor)
	l.updateVisibility()
}

// SetLayout replaces the layout options. A nil RowHeight keeps the current
// measure.
func (l *List) SetLayout(opts Options) {
	if opts.RowHeight == nil {
		opts.RowHeight = l.opts.RowHeight
	}
	l.opts = opts
	l.offset = l.clampOffset(l.offset)
	l.updateVisibility()
}

// ReloadData discards the materialized rows and re-reads every section.
func (l *List) ReloadData() {
	l.sections = timeline.CloneSections(l.source.Sections())
	clear(l.highlighted)
	l.offset = l.clampOffset(l.offset)
	l.updateVisibility()
}

// NumberOfSections returns the materialized section count.
func (l *List) NumberOfSections() int { return len(l.sections) }

// NumberOfRows returns the materialized row count of section.
func (l *List) NumberOfRows(section int) int {
	if section < 0 || section >= len(l.sections) {
		return 0
	}
	return len(l.sections[section].Rows)
}

// Row returns the materialized row at ip.
func (l *List) Row(ip IndexPath) (timeline.MessageRow, bool) {
	if ip.Section < 0 || ip.Section >= len(l.sections) {
		return timeline.MessageRow{}, false
	}
	rows := l.sections[ip.Section].Rows
	if ip.Row < 0 || ip.Row >= len(rows) {
		return timeline.MessageRow{}, false
	}
	return rows[ip.Row], true
}

// Section returns the materialized section header data.
func (l *List) Section(i int) (timeline.MessagesSection, bool) {
	if i < 0 || i >= len(l.sections) {
		return timeline.MessagesSection{}, false
	}
	return l.sections[i], true
}

// IndexPathOf finds a row by message id.
func (l *List) IndexPathOf(id string) (IndexPath, bool) {
	return findRow(l.sections, id)
}

// IsVisible reports whether the row with id is at least partly on screen.
func (l *List) IsVisible(id string) bool {
	_, ok := l.visible[id]
	return ok
}

// Highlighted reports whether the row changed in an animated batch since the
// last ClearHighlights.
func (l *List) Highlighted(id string) bool {
	_, ok := l.highlighted[id]
	return ok
}

// ClearHighlights ends every running change animation.
func (l *List) ClearHighlights() { clear(l.highlighted) }

func (l *List) inconsistent(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrInconsistentBatch)
}

// checkAgainstSource compares the materialized shape with the data source.
func (l *List) checkAgainstSource() error {
	want := l.source.Sections()
	if len(want) != len(l.sections) {
		return l.inconsistent("list has %d sections, data source has %d", len(l.sections), len(want))
	}
	for s := range want {
		got, exp := l.sections[s].Rows, want[s].Rows
		if len(got) != len(exp) {
			return l.inconsistent("section %d has %d rows, data source has %d", s, len(got), len(exp))
		}
		for r := range got {
			if got[r].ID != exp[r].ID {
				return l.inconsistent("section %d row %d is %q, data source has %q", s, r, got[r].ID, exp[r].ID)
			}
		}
	}
	return nil
}
