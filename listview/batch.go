package listview

import (
	"fmt"

	"github.com/CrestNiraj12/terminalchat/timeline"
)

// Batch collects the structural changes of one PerformBatch call.
//
// Deletes, move sources, reloads and reconfigures address the list before the
// batch. Inserts and move destinations address the list after it. Order of
// the calls inside a batch does not matter.
type Batch struct {
	deleteSections []int
	insertSections []int
	deleteRows     []IndexPath
	insertRows     []IndexPath
	moves          []move
	reloads        []IndexPath
	reconfigures   []IndexPath
}

type move struct{ from, to IndexPath }

func (b *Batch) DeleteSections(sections ...int) { b.deleteSections = append(b.deleteSections, sections...) }
func (b *Batch) InsertSections(sections ...int) { b.insertSections = append(b.insertSections, sections...) }
func (b *Batch) DeleteRows(paths ...IndexPath)  { b.deleteRows = append(b.deleteRows, paths...) }
func (b *Batch) InsertRows(paths ...IndexPath)  { b.insertRows = append(b.insertRows, paths...) }

// MoveRow moves a row keeping its materialized data.
func (b *Batch) MoveRow(from, to IndexPath) { b.moves = append(b.moves, move{from: from, to: to}) }

// ReloadRows re-reads rows from the data source and marks them changed.
func (b *Batch) ReloadRows(paths ...IndexPath) { b.reloads = append(b.reloads, paths...) }

// ReconfigureRows re-reads rows from the data source without marking them.
func (b *Batch) ReconfigureRows(paths ...IndexPath) {
	b.reconfigures = append(b.reconfigures, paths...)
}

// IsEmpty reports whether the batch holds no change.
func (b *Batch) IsEmpty() bool {
	return len(b.deleteSections)+len(b.insertSections)+len(b.deleteRows)+len(b.insertRows)+
		len(b.moves)+len(b.reloads)+len(b.reconfigures) == 0
}

// PerformBatch applies the changes collected by update as one atomic step.
// Animated batches mark inserted rows as changed; reloaded rows are always
// marked.
//
// When the result disagrees with the data source the list reloads everything
// from the source and returns domain.ErrInconsistentBatch.
func (l *List) PerformBatch(animated bool, update func(b *Batch)) error {
	var b Batch
	update(&b)

	anchor := l.captureAnchor()
	next, marked, err := l.applyBatch(&b)
	if err == nil {
		l.sections = next
		err = l.checkAgainstSource()
	}
	if err != nil {
		l.sections = timeline.CloneSections(l.source.Sections())
		clear(l.highlighted)
		l.restoreAnchor(anchor)
		l.updateVisibility()
		return err
	}

	for _, id := range marked.reloaded {
		l.highlighted[id] = struct{}{}
	}
	if animated {
		for _, id := range marked.inserted {
			l.highlighted[id] = struct{}{}
		}
	}
	l.restoreAnchor(anchor)
	l.updateVisibility()
	return nil
}

type batchMarks struct {
	inserted []string
	reloaded []string
}

func (l *List) applyBatch(b *Batch) ([]timeline.MessagesSection, batchMarks, error) {
	var marks batchMarks
	pre := l.sections
	src := l.source.Sections()

	dropSection := make(map[int]bool, len(b.deleteSections))
	for _, s := range b.deleteSections {
		if s < 0 || s >= len(pre) || dropSection[s] {
			return nil, marks, l.inconsistent("delete section %d", s)
		}
		dropSection[s] = true
	}

	validPre := func(ip IndexPath) bool {
		return ip.Section >= 0 && ip.Section < len(pre) && !dropSection[ip.Section] &&
			ip.Row >= 0 && ip.Row < len(pre[ip.Section].Rows)
	}

	removed := make(map[IndexPath]bool, len(b.deleteRows)+len(b.moves))
	for _, ip := range b.deleteRows {
		if !validPre(ip) || removed[ip] {
			return nil, marks, l.inconsistent("delete row %v", ip)
		}
		removed[ip] = true
	}
	for _, m := range b.moves {
		if !validPre(m.from) || removed[m.from] {
			return nil, marks, l.inconsistent("move from %v", m.from)
		}
		removed[m.from] = true
	}

	refresh := make([]string, 0, len(b.reloads)+len(b.reconfigures))
	for _, ip := range append(append([]IndexPath(nil), b.reloads...), b.reconfigures...) {
		if !validPre(ip) || removed[ip] && !isMoveSource(b.moves, ip) {
			return nil, marks, l.inconsistent("refresh row %v", ip)
		}
		refresh = append(refresh, pre[ip.Section].Rows[ip.Row].ID)
	}
	for _, ip := range b.reloads {
		marks.reloaded = append(marks.reloaded, pre[ip.Section].Rows[ip.Row].ID)
	}

	kept := make([]timeline.MessagesSection, 0, len(pre))
	for s, sec := range pre {
		if dropSection[s] {
			continue
		}
		rows := make([]timeline.MessageRow, 0, len(sec.Rows))
		for r, row := range sec.Rows {
			if !removed[IndexPath{Section: s, Row: r}] {
				rows = append(rows, row)
			}
		}
		sec.Rows = rows
		kept = append(kept, sec)
	}

	freshSections := make(map[int]timeline.MessagesSection, len(b.insertSections))
	for _, s := range b.insertSections {
		if s < 0 || s >= len(src) {
			return nil, marks, l.inconsistent("insert section %d", s)
		}
		if _, dup := freshSections[s]; dup {
			return nil, marks, l.inconsistent("insert section %d twice", s)
		}
		sec := timeline.CloneSections(src[s : s+1])[0]
		freshSections[s] = sec
		for _, row := range sec.Rows {
			marks.inserted = append(marks.inserted, row.ID)
		}
	}
	post, err := spliceAt(kept, freshSections)
	if err != nil {
		return nil, marks, l.inconsistent("insert sections: %v", err)
	}

	placed := make(map[int]map[int]timeline.MessageRow)
	place := func(ip IndexPath, row timeline.MessageRow) error {
		if ip.Section < 0 || ip.Section >= len(post) {
			return l.inconsistent("row target %v", ip)
		}
		if _, fresh := freshSections[ip.Section]; fresh {
			return l.inconsistent("row target %v is in an inserted section", ip)
		}
		if placed[ip.Section] == nil {
			placed[ip.Section] = make(map[int]timeline.MessageRow)
		}
		if _, dup := placed[ip.Section][ip.Row]; dup {
			return l.inconsistent("row target %v twice", ip)
		}
		placed[ip.Section][ip.Row] = row
		return nil
	}
	for _, ip := range b.insertRows {
		if ip.Section < 0 || ip.Section >= len(src) || ip.Row < 0 || ip.Row >= len(src[ip.Section].Rows) {
			return nil, marks, l.inconsistent("insert row %v", ip)
		}
		row := src[ip.Section].Rows[ip.Row]
		if err := place(ip, row); err != nil {
			return nil, marks, err
		}
		marks.inserted = append(marks.inserted, row.ID)
	}
	for _, m := range b.moves {
		if err := place(m.to, pre[m.from.Section].Rows[m.from.Row]); err != nil {
			return nil, marks, err
		}
	}
	for s, rows := range placed {
		merged, err := spliceAt(post[s].Rows, rows)
		if err != nil {
			return nil, marks, l.inconsistent("section %d: %v", s, err)
		}
		post[s].Rows = merged
	}

	for _, id := range refresh {
		ip, ok := findRow(post, id)
		if !ok || ip.Section >= len(src) || ip.Row >= len(src[ip.Section].Rows) ||
			src[ip.Section].Rows[ip.Row].ID != id {
			return nil, marks, l.inconsistent("refresh row %q", id)
		}
		post[ip.Section].Rows[ip.Row] = src[ip.Section].Rows[ip.Row]
	}

	// Header data is always re-read.
	for s := range post {
		if s < len(src) {
			post[s].ID = src[s].ID
			post[s].Date = src[s].Date
		}
	}
	return post, marks, nil
}

func isMoveSource(moves []move, ip IndexPath) bool {
	for _, m := range moves {
		if m.from == ip {
			return true
		}
	}
	return false
}

func findRow(sections []timeline.MessagesSection, id string) (IndexPath, bool) {
	for s, sec := range sections {
		for r, row := range sec.Rows {
			if row.ID == id {
				return IndexPath{Section: s, Row: r}, true
			}
		}
	}
	return IndexPath{}, false
}

// spliceAt places every value of at at its final index and fills the
// remaining slots with kept, in order.
func spliceAt[T any](kept []T, at map[int]T) ([]T, error) {
	n := len(kept) + len(at)
	out := make([]T, 0, n)
	k := 0
	for i := 0; i < n; i++ {
		if v, ok := at[i]; ok {
			out = append(out, v)
			continue
		}
		if k >= len(kept) {
			return nil, fmt.Errorf("index %d past end", i)
		}
		out = append(out, kept[k])
		k++
	}
	return out, nil
}
