// Package sheet provides typed tabular read/write over the operator
// workbook, with header-contract enforcement.
package sheet

import (
	"fmt"
)

// CellWrite is a single cell mutation addressed by data-row index (0-based,
// header excluded) and column index.
type CellWrite struct {
	Row   int
	Col   int
	Value string
}

// Store is the persistence interface for the workbook. All operations are
// synchronous; there is no transaction spanning multiple writes.
type Store interface {
	// EnsureHeader writes the header when the table is empty, otherwise
	// validates that the existing header's first len(want) columns match
	// want case-insensitively at each position. A mismatch returns a
	// *SchemaMismatchError.
	EnsureHeader(table string, want []string) error

	// ReadRows returns the data rows (header excluded) in order, each
	// padded or truncated to colCount cells.
	ReadRows(table string, colCount int) ([][]string, error)

	// WriteCell overwrites one cell of a data row.
	WriteCell(table string, row, col int, value string) error

	// WriteRow overwrites a full data row. Cells beyond len(cells) are
	// cleared; callers reconstruct the entire slice they intend to touch.
	WriteRow(table string, row int, cells []string) error

	// AppendRows adds rows at the end. No uniqueness is enforced; callers
	// dedup first.
	AppendRows(table string, rows [][]string) error

	// Clear removes every row including the header.
	Clear(table string) error

	Flush() error
	Close() error
}

// SchemaMismatchError reports a header cell that does not match the
// expected contract. It is fatal to the invoking step.
type SchemaMismatchError struct {
	Table string
	Col   int
	Want  string
	Got   string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("sheet %q: header column %d is %q, want %q", e.Table, e.Col+1, e.Got, e.Want)
}

// ApplyWrites writes a batch of cell mutations to one table, stopping at
// the first error.
func ApplyWrites(st Store, table string, writes []CellWrite) error {
	for _, w := range writes {
		if err := st.WriteCell(table, w.Row, w.Col, w.Value); err != nil {
			return err
		}
	}
	return nil
}
