package timeline

import (
	"cmp"
	"slices"
	"sort"
)

// Diff computes the phase-ordered operations that turn old into new.
//
// Index spaces: delete operations address old, swap and edit operations
// address the intermediate snapshots (AfterDeletes and
// AfterDeletesSwapsAndEdits share the same sections in the same order), and
// insert operations address new. Each list is meant to be applied as one
// batch with before/after semantics.
//
// Diff is pure and total. Duplicate ids are tolerated: the first occurrence
// is the identity, later ones are treated as plain deletes or inserts.
func Diff(oldSections, newSections []MessagesSection) SplitInfo {
	oldIndex := sectionIndex(oldSections)
	newIndex := sectionIndex(newSections)

	matched := func(index map[int64]int, other map[int64]int, i int, s MessagesSection) bool {
		if index[s.ID] != i {
			return false
		}
		_, ok := other[s.ID]
		return ok
	}

	var oldCommon, newCommon []int64
	for i, s := range oldSections {
		if matched(oldIndex, newIndex, i, s) {
			oldCommon = append(oldCommon, s.ID)
		}
	}
	commonIndex := make(map[int64]int, len(oldCommon))
	for j, s := range newSections {
		if matched(newIndex, oldIndex, j, s) {
			commonIndex[s.ID] = len(newCommon)
			newCommon = append(newCommon, s.ID)
		}
	}
	if !slices.Equal(oldCommon, newCommon) {
		// Surviving days changed relative order, which no row or section
		// operation can express.
		return replaceAll(oldSections, newSections)
	}

	split := SplitInfo{
		AfterDeletes:              make([]MessagesSection, len(newCommon)),
		AfterDeletesSwapsAndEdits: make([]MessagesSection, len(newCommon)),
	}

	for i, s := range oldSections {
		if !matched(oldIndex, newIndex, i, s) {
			split.DeleteOperations = append(split.DeleteOperations, DeleteSection(i))
		}
	}
	for j, s := range newSections {
		if !matched(newIndex, oldIndex, j, s) {
			split.InsertOperations = append(split.InsertOperations, InsertSection(j))
		}
	}

	days := slices.Clone(newCommon)
	slices.SortFunc(days, func(a, b int64) int { return cmp.Compare(b, a) })
	for _, id := range days {
		oi, nj, k := oldIndex[id], newIndex[id], commonIndex[id]
		oldSection, newSection := oldSections[oi], newSections[nj]

		plan := diffRows(oldSection.Rows, newSection.Rows)
		for _, r := range plan.deletes {
			split.DeleteOperations = append(split.DeleteOperations, DeleteRow(oi, r))
		}
		for _, r := range plan.inserts {
			split.InsertOperations = append(split.InsertOperations, InsertRow(nj, r))
		}
		for _, sw := range plan.swaps {
			split.SwapOperations = append(split.SwapOperations, Swap(k, sw.from, sw.to))
		}
		for _, e := range plan.edits {
			split.EditOperations = append(split.EditOperations, Edit(k, e.row, e.content))
		}

		split.AfterDeletes[k] = MessagesSection{ID: id, Date: oldSection.Date, Rows: plan.keptOld}
		split.AfterDeletesSwapsAndEdits[k] = MessagesSection{ID: id, Date: newSection.Date, Rows: plan.keptNew}
	}

	sortOperations(&split)
	return split
}

func sectionIndex(sections []MessagesSection) map[int64]int {
	index := make(map[int64]int, len(sections))
	for i, s := range sections {
		if _, ok := index[s.ID]; !ok {
			index[s.ID] = i
		}
	}
	return index
}

func replaceAll(oldSections, newSections []MessagesSection) SplitInfo {
	var split SplitInfo
	for i := len(oldSections) - 1; i >= 0; i-- {
		split.DeleteOperations = append(split.DeleteOperations, DeleteSection(i))
	}
	for j := range newSections {
		split.InsertOperations = append(split.InsertOperations, InsertSection(j))
	}
	return split
}

// sortOperations orders deletes descending and everything else ascending so
// sequential application never invalidates an index that is still pending.
func sortOperations(split *SplitInfo) {
	slices.SortStableFunc(split.DeleteOperations, func(a, b Operation) int {
		if c := cmp.Compare(b.Section, a.Section); c != 0 {
			return c
		}
		return cmp.Compare(b.Row, a.Row)
	})
	asc := func(a, b Operation) int {
		if c := cmp.Compare(a.Section, b.Section); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	}
	slices.SortStableFunc(split.InsertOperations, asc)
	slices.SortStableFunc(split.EditOperations, asc)
	slices.SortStableFunc(split.SwapOperations, func(a, b Operation) int {
		if c := cmp.Compare(a.Section, b.Section); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
}

type rowSwap struct{ from, to int }

type rowEdit struct {
	row     int
	content bool
}

type rowPlan struct {
	deletes []int // indices in old rows
	inserts []int // indices in new rows
	swaps   []rowSwap
	edits   []rowEdit
	keptOld []MessageRow
	keptNew []MessageRow
}

// diffRows matches rows by id. Common rows on the longest order-preserving
// run stay in place; the others move. A moved row whose visible content
// changed is deleted and re-inserted instead of swapped. Any kept row that
// differs from its new version, moved or not, is edited at its final index.
func diffRows(oldRows, newRows []MessageRow) rowPlan {
	oldPos := rowIndex(oldRows)
	newPos := rowIndex(newRows)

	deleted := make([]bool, len(oldRows))
	for i, r := range oldRows {
		if _, ok := newPos[r.ID]; !ok || oldPos[r.ID] != i {
			deleted[i] = true
		}
	}
	inserted := make([]bool, len(newRows))
	newRank := make(map[int]int, len(newRows))
	for j, r := range newRows {
		if _, ok := oldPos[r.ID]; !ok || newPos[r.ID] != j {
			inserted[j] = true
			continue
		}
		newRank[j] = len(newRank)
	}

	var common []int
	var ranks []int
	for i, r := range oldRows {
		if deleted[i] {
			continue
		}
		common = append(common, i)
		ranks = append(ranks, newRank[newPos[r.ID]])
	}
	stays := longestIncreasing(ranks)

	moved := make(map[string]bool)
	for t, i := range common {
		if stays[t] {
			continue
		}
		o := oldRows[i]
		j := newPos[o.ID]
		if !o.Message.ContentChanged(newRows[j].Message) {
			moved[o.ID] = true
			continue
		}
		deleted[i] = true
		inserted[j] = true
	}

	var plan rowPlan
	for i := len(oldRows) - 1; i >= 0; i-- {
		if deleted[i] {
			plan.deletes = append(plan.deletes, i)
		}
	}
	for j := range newRows {
		if inserted[j] {
			plan.inserts = append(plan.inserts, j)
		}
	}

	keptOldPos := make(map[string]int)
	for i, r := range oldRows {
		if !deleted[i] {
			keptOldPos[r.ID] = len(plan.keptOld)
			plan.keptOld = append(plan.keptOld, r)
		}
	}
	for j, n := range newRows {
		if inserted[j] {
			continue
		}
		to := len(plan.keptNew)
		plan.keptNew = append(plan.keptNew, n)

		if moved[n.ID] {
			plan.swaps = append(plan.swaps, rowSwap{from: keptOldPos[n.ID], to: to})
		}
		o := plan.keptOld[keptOldPos[n.ID]]
		if !o.Equal(n) {
			plan.edits = append(plan.edits, rowEdit{row: to, content: o.Message.ContentChanged(n.Message)})
		}
	}
	return plan
}

func rowIndex(rows []MessageRow) map[string]int {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		if _, ok := index[r.ID]; !ok {
			index[r.ID] = i
		}
	}
	return index
}

// longestIncreasing marks one longest strictly increasing subsequence of seq.
// Among equally long candidates it keeps the later elements, so the earliest
// out-of-order rows are the ones that move.
func longestIncreasing(seq []int) []bool {
	keep := make([]bool, len(seq))
	if len(seq) == 0 {
		return keep
	}
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		k := sort.Search(len(tails), func(k int) bool { return seq[tails[k]] >= v })
		prev[i] = -1
		if k > 0 {
			prev[i] = tails[k-1]
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}
