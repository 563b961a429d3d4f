package timeline

import (
	"fmt"
	"slices"

	"github.com/CrestNiraj12/terminalchat/domain"
)

// Replay applies split to a copy of old the way an indexed list applies the
// four batches: deletes, swaps, edits, inserts. Row data is only taken from
// the snapshot the list would query at that moment, so a row that the split
// forgets to edit keeps its stale value. Section headers are re-read from new
// once the last batch lands.
//
// It returns domain.ErrInconsistentBatch when an operation is out of range or
// a batch leaves counts that disagree with its snapshot.
func Replay(oldSections, newSections []MessagesSection, split SplitInfo) ([]MessagesSection, error) {
	cur := CloneSections(oldSections)

	cur, err := replayDeletes(cur, split.DeleteOperations)
	if err != nil {
		return nil, err
	}
	if err := checkShape("deletes", cur, split.AfterDeletes); err != nil {
		return nil, err
	}

	cur, err = replaySwaps(cur, split.SwapOperations)
	if err != nil {
		return nil, err
	}
	if err := checkShape("swaps", cur, split.AfterDeletesSwapsAndEdits); err != nil {
		return nil, err
	}

	if err := replayEdits(cur, split.AfterDeletesSwapsAndEdits, split.EditOperations); err != nil {
		return nil, err
	}

	cur, err = replayInserts(cur, newSections, split.InsertOperations)
	if err != nil {
		return nil, err
	}
	if err := checkShape("inserts", cur, newSections); err != nil {
		return nil, err
	}
	for i := range cur {
		cur[i].ID = newSections[i].ID
		cur[i].Date = newSections[i].Date
	}
	return cur, nil
}

func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrInconsistentBatch)
}

func checkShape(phase string, got, want []MessagesSection) error {
	if len(got) != len(want) {
		return inconsistent("after %s: %d sections, snapshot has %d", phase, len(got), len(want))
	}
	for i := range got {
		if len(got[i].Rows) != len(want[i].Rows) {
			return inconsistent("after %s: section %d has %d rows, snapshot has %d",
				phase, i, len(got[i].Rows), len(want[i].Rows))
		}
		for j := range got[i].Rows {
			if got[i].Rows[j].ID != want[i].Rows[j].ID {
				return inconsistent("after %s: section %d row %d is %q, snapshot has %q",
					phase, i, j, got[i].Rows[j].ID, want[i].Rows[j].ID)
			}
		}
	}
	return nil
}

func replayDeletes(cur []MessagesSection, ops []Operation) ([]MessagesSection, error) {
	dropSection := make(map[int]bool)
	dropRow := make(map[int]map[int]bool)
	for _, op := range ops {
		switch op.Kind {
		case OpDeleteSection:
			if op.Section < 0 || op.Section >= len(cur) || dropSection[op.Section] {
				return nil, inconsistent("%s", op)
			}
			dropSection[op.Section] = true
		case OpDelete:
			if op.Section < 0 || op.Section >= len(cur) || op.Row < 0 || op.Row >= len(cur[op.Section].Rows) {
				return nil, inconsistent("%s", op)
			}
			if dropRow[op.Section] == nil {
				dropRow[op.Section] = make(map[int]bool)
			}
			if dropRow[op.Section][op.Row] {
				return nil, inconsistent("%s twice", op)
			}
			dropRow[op.Section][op.Row] = true
		default:
			return nil, inconsistent("%s in delete batch", op)
		}
	}

	out := make([]MessagesSection, 0, len(cur))
	for i, s := range cur {
		if dropSection[i] {
			continue
		}
		rows := make([]MessageRow, 0, len(s.Rows))
		for j, r := range s.Rows {
			if !dropRow[i][j] {
				rows = append(rows, r)
			}
		}
		s.Rows = rows
		out = append(out, s)
	}
	return out, nil
}

func replaySwaps(cur []MessagesSection, ops []Operation) ([]MessagesSection, error) {
	bySection := make(map[int][]Operation)
	for _, op := range ops {
		if op.Kind != OpSwap || op.Section < 0 || op.Section >= len(cur) {
			return nil, inconsistent("%s", op)
		}
		bySection[op.Section] = append(bySection[op.Section], op)
	}
	for s, sectionOps := range bySection {
		rows := cur[s].Rows
		from := make(map[int]bool, len(sectionOps))
		placed := make(map[int]MessageRow, len(sectionOps))
		for _, op := range sectionOps {
			if op.Row < 0 || op.Row >= len(rows) || from[op.Row] {
				return nil, inconsistent("%s", op)
			}
			from[op.Row] = true
			if _, dup := placed[op.To]; dup {
				return nil, inconsistent("%s", op)
			}
			placed[op.To] = rows[op.Row]
		}
		kept := make([]MessageRow, 0, len(rows))
		for j, r := range rows {
			if !from[j] {
				kept = append(kept, r)
			}
		}
		merged, err := spliceAt(kept, placed)
		if err != nil {
			return nil, inconsistent("swap section %d: %v", s, err)
		}
		cur[s].Rows = merged
	}
	return cur, nil
}

func replayEdits(cur, source []MessagesSection, ops []Operation) error {
	for _, op := range ops {
		if op.Kind != OpEdit || op.Section < 0 || op.Section >= len(cur) || op.Section >= len(source) {
			return inconsistent("%s", op)
		}
		rows, src := cur[op.Section].Rows, source[op.Section].Rows
		if op.Row < 0 || op.Row >= len(rows) || op.Row >= len(src) {
			return inconsistent("%s", op)
		}
		rows[op.Row] = src[op.Row]
	}
	return nil
}

func replayInserts(cur, source []MessagesSection, ops []Operation) ([]MessagesSection, error) {
	newSections := make(map[int]MessagesSection)
	newRows := make(map[int]map[int]MessageRow)
	for _, op := range ops {
		if op.Section < 0 || op.Section >= len(source) {
			return nil, inconsistent("%s", op)
		}
		switch op.Kind {
		case OpInsertSection:
			if _, dup := newSections[op.Section]; dup {
				return nil, inconsistent("%s twice", op)
			}
			s := source[op.Section]
			newSections[op.Section] = MessagesSection{ID: s.ID, Date: s.Date, Rows: slices.Clone(s.Rows)}
		case OpInsert:
			src := source[op.Section].Rows
			if op.Row < 0 || op.Row >= len(src) {
				return nil, inconsistent("%s", op)
			}
			if newRows[op.Section] == nil {
				newRows[op.Section] = make(map[int]MessageRow)
			}
			if _, dup := newRows[op.Section][op.Row]; dup {
				return nil, inconsistent("%s twice", op)
			}
			newRows[op.Section][op.Row] = src[op.Row]
		default:
			return nil, inconsistent("%s in insert batch", op)
		}
	}

	out, err := spliceAt(cur, newSections)
	if err != nil {
		return nil, inconsistent("insert sections: %v", err)
	}
	for s, rows := range newRows {
		if _, fresh := newSections[s]; fresh {
			return nil, inconsistent("row insert into inserted section %d", s)
		}
		if s >= len(out) {
			return nil, inconsistent("row insert into missing section %d", s)
		}
		merged, err := spliceAt(out[s].Rows, rows)
		if err != nil {
			return nil, inconsistent("insert section %d: %v", s, err)
		}
		out[s].Rows = merged
	}
	return out, nil
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
