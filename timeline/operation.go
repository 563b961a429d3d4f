package timeline

import "fmt"

// OpKind is the kind of a structural list operation.
type OpKind int

const (
	OpDeleteSection OpKind = iota
	OpInsertSection
	OpDelete
	OpInsert
	OpSwap
	OpEdit
)

// Operation is one structural change against the indexed list.
//
// Row is the row index for deletes, inserts and edits and the source index
// for swaps. To is only used by swaps. ContentChanged is only used by edits:
// true asks for an animated reload, false for a silent reconfigure.
type Operation struct {
	Kind           OpKind
	Section        int
	Row            int
	To             int
	ContentChanged bool
}

func DeleteSection(section int) Operation {
	return Operation{Kind: OpDeleteSection, Section: section, Row: -1}
}

func InsertSection(section int) Operation {
	return Operation{Kind: OpInsertSection, Section: section, Row: -1}
}

func DeleteRow(section, row int) Operation {
	return Operation{Kind: OpDelete, Section: section, Row: row}
}

func InsertRow(section, row int) Operation {
	return Operation{Kind: OpInsert, Section: section, Row: row}
}

// Swap removes the row at from and inserts it at to, inside one batch.
func Swap(section, from, to int) Operation {
	return Operation{Kind: OpSwap, Section: section, Row: from, To: to}
}

func Edit(section, row int, contentChanged bool) Operation {
	return Operation{Kind: OpEdit, Section: section, Row: row, ContentChanged: contentChanged}
}

func (o Operation) String() string {
	switch o.Kind {
	case OpDeleteSection:
		return fmt.Sprintf("deleteSection %d", o.Section)
	case OpInsertSection:
		return fmt.Sprintf("insertSection %d", o.Section)
	case OpDelete:
		return fmt.Sprintf("delete section %d row %d", o.Section, o.Row)
	case OpInsert:
		return fmt.Sprintf("insert section %d row %d", o.Section, o.Row)
	case OpSwap:
		return fmt.Sprintf("swap section %d rowFrom %d rowTo %d", o.Section, o.Row, o.To)
	case OpEdit:
		return fmt.Sprintf("edit section %d row %d isContentEdit %t", o.Section, o.Row, o.ContentChanged)
	default:
		return "unknown"
	}
}

// SplitInfo is the result of a diff: four phase-ordered operation lists plus
// the intermediate snapshots the list's data source must expose while the
// phases are applied.
type SplitInfo struct {
	// AfterDeletes is the old list with deleted sections and rows removed.
	AfterDeletes []MessagesSection
	// AfterDeletesSwapsAndEdits is the new list with inserted sections and
	// rows removed.
	AfterDeletesSwapsAndEdits []MessagesSection

	DeleteOperations []Operation
	SwapOperations   []Operation
	EditOperations   []Operation
	InsertOperations []Operation
}

// IsEmpty reports whether no operation was emitted.
func (s SplitInfo) IsEmpty() bool {
	return len(s.DeleteOperations) == 0 && len(s.SwapOperations) == 0 &&
		len(s.EditOperations) == 0 && len(s.InsertOperations) == 0
}

// Count returns the total number of operations.
func (s SplitInfo) Count() int {
	return len(s.DeleteOperations) + len(s.SwapOperations) + len(s.EditOperations) + len(s.InsertOperations)
}
