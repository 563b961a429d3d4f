package listview

// SpanKind tells a header span from a row span.
type SpanKind int

const (
	SpanRow SpanKind = iota
	SpanHeader
)

// Span is one laid-out item. Top is measured in lines from the leading edge.
type Span struct {
	Kind      SpanKind
	IndexPath IndexPath
	Top       int
	Height    int
}

func (s Span) bottom() int { return s.Top + s.Height }

func (l *List) layout() []Span {
	spans := make([]Span, 0, len(l.sections)*4)
	top := 0
	header := func(s int) {
		if l.opts.HeaderHeight <= 0 {
			return
		}
		spans = append(spans, Span{Kind: SpanHeader, IndexPath: IndexPath{Section: s, Row: -1}, Top: top, Height: l.opts.HeaderHeight})
		top += l.opts.HeaderHeight
	}
	for s, sec := range l.sections {
		if !l.opts.HeaderAfterRows {
			header(s)
		}
		for r, row := range sec.Rows {
			h := max(l.opts.RowHeight(row), 1)
			spans = append(spans, Span{Kind: SpanRow, IndexPath: IndexPath{Section: s, Row: r}, Top: top, Height: h})
			top += h
		}
		if l.opts.HeaderAfterRows {
			header(s)
		}
	}
	return spans
}

// ContentHeight is the laid-out height of every section in lines.
func (l *List) ContentHeight() int {
	spans := l.layout()
	if len(spans) == 0 {
		return 0
	}
	return spans[len(spans)-1].bottom()
}

// Offset is the number of lines scrolled away from the leading edge.
func (l *List) Offset() int { return l.offset }

// ViewportHeight returns the visible height in lines.
func (l *List) ViewportHeight() int { return l.height }

func (l *List) maxOffset() int {
	return max(l.ContentHeight()-l.height, 0)
}

func (l *List) clampOffset(off int) int {
	return min(max(off, 0), l.maxOffset())
}

// SetViewportHeight resizes the viewport keeping the first visible row in
// place.
func (l *List) SetViewportHeight(h int) {
	anchor := l.captureAnchor()
	l.height = max(h, 0)
	l.restoreAnchor(anchor)
	l.updateVisibility()
}

// ScrollBy moves the viewport delta lines towards the trailing edge.
// Negative values move towards the leading edge.
func (l *List) ScrollBy(delta int) {
	l.offset = l.clampOffset(l.offset + delta)
	l.updateVisibility()
}

// ScrollToEdge moves the viewport to one end of the list.
func (l *List) ScrollToEdge(e Edge) {
	if e == EdgeLeading {
		l.offset = 0
	} else {
		l.offset = l.maxOffset()
	}
	l.updateVisibility()
}

// ScrollTo scrolls the least distance that makes the row fully visible. It
// reports false when ip does not name a row.
func (l *List) ScrollTo(ip IndexPath) bool {
	for _, sp := range l.layout() {
		if sp.Kind != SpanRow || sp.IndexPath != ip {
			continue
		}
		switch {
		case sp.Top < l.offset:
			l.offset = sp.Top
		case sp.bottom() > l.offset+l.height:
			l.offset = sp.bottom() - l.height
		}
		l.offset = l.clampOffset(l.offset)
		l.updateVisibility()
		return true
	}
	return false
}

// IsAtEdge reports whether the viewport touches the given end. A list shorter
// than its viewport is at both edges.
func (l *List) IsAtEdge(e Edge) bool {
	if e == EdgeLeading {
		return l.offset <= 0
	}
	return l.offset >= l.maxOffset()
}

// Window returns the spans intersecting the viewport in index order.
func (l *List) Window() []Span {
	if l.height <= 0 {
		return nil
	}
	var out []Span
	end := l.offset + l.height
	for _, sp := range l.layout() {
		if sp.bottom() <= l.offset {
			continue
		}
		if sp.Top >= end {
			break
		}
		out = append(out, sp)
	}
	return out
}

// VisibleRows returns the index paths of rows at least partly visible.
func (l *List) VisibleRows() []IndexPath {
	var out []IndexPath
	for _, sp := range l.Window() {
		if sp.Kind == SpanRow {
			out = append(out, sp.IndexPath)
		}
	}
	return out
}

type anchor struct {
	pinned bool
	id     string
	delta  int
}

func (l *List) captureAnchor() anchor {
	if l.opts.PinLeading && l.offset <= 0 {
		return anchor{pinned: true}
	}
	for _, sp := range l.Window() {
		if sp.Kind != SpanRow {
			continue
		}
		row, _ := l.Row(sp.IndexPath)
		return anchor{id: row.ID, delta: sp.Top - l.offset}
	}
	return anchor{}
}

func (l *List) restoreAnchor(a anchor) {
	switch {
	case a.pinned:
		l.offset = 0
	case a.id != "":
		ip, ok := l.IndexPathOf(a.id)
		if !ok {
			break
		}
		for _, sp := range l.layout() {
			if sp.Kind == SpanRow && sp.IndexPath == ip {
				l.offset = sp.Top - a.delta
				break
			}
		}
	}
	l.offset = l.clampOffset(l.offset)
}

// updateVisibility diffs the visible row set and notifies the observer: ends
// first in their old order, then appearances in index order.
func (l *List) updateVisibility() {
	now := make(map[string]IndexPath)
	var order []string
	for _, ip := range l.VisibleRows() {
		row, _ := l.Row(ip)
		if _, dup := now[row.ID]; dup {
			continue
		}
		now[row.ID] = ip
		order = append(order, row.ID)
	}

	for _, id := range l.shownOrder {
		if _, still := now[id]; still {
			continue
		}
		row := l.shownRows[id]
		delete(l.shownRows, id)
		if l.observer != nil {
			l.observer.DidEndDisplaying(row)
		}
	}

	for _, id := range order {
		ip := now[id]
		row, _ := l.Row(ip)
		_, was := l.shownRows[id]
		l.shownRows[id] = row
		if !was && l.observer != nil {
			l.observer.WillDisplay(ip, row)
		}
	}
	l.shownOrder = order
	l.visible = now
}
