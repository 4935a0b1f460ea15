package sheet

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXStore implements Store over a single xlsx workbook file. The file is
// loaded once at open and written back on Flush/Close.
type XLSXStore struct {
	path string
	file *xlsx.File
}

// OpenXLSX opens the workbook at path, creating an empty one when the file
// does not exist yet.
func OpenXLSX(path string) (*XLSXStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &XLSXStore{path: path, file: xlsx.NewFile()}, nil
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	return &XLSXStore{path: path, file: f}, nil
}

func (s *XLSXStore) sheet(table string, create bool) (*xlsx.Sheet, error) {
	if sh, ok := s.file.Sheet[table]; ok {
		return sh, nil
	}
	if !create {
		return nil, eris.Errorf("xlsx: sheet %q not found", table)
	}
	sh, err := s.file.AddSheet(table)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: add sheet %q", table)
	}
	return sh, nil
}

func (s *XLSXStore) EnsureHeader(table string, want []string) error {
	sh, err := s.sheet(table, true)
	if err != nil {
		return err
	}

	if len(sh.Rows) == 0 {
		row := sh.AddRow()
		for _, col := range want {
			row.AddCell().SetString(col)
		}
		return nil
	}

	header := sh.Rows[0]
	for i, col := range want {
		var got string
		if i < len(header.Cells) {
			got = header.Cells[i].String()
		}
		if !strings.EqualFold(strings.TrimSpace(got), col) {
			return &SchemaMismatchError{Table: table, Col: i, Want: col, Got: got}
		}
	}
	return nil
}

func (s *XLSXStore) ReadRows(table string, colCount int) ([][]string, error) {
	sh, err := s.sheet(table, false)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i, row := range sh.Rows {
		if i == 0 {
			continue // header
		}
		cells := make([]string, colCount)
		for j := 0; j < colCount && j < len(row.Cells); j++ {
			cells[j] = row.Cells[j].String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func (s *XLSXStore) WriteCell(table string, row, col int, value string) error {
	sh, err := s.sheet(table, false)
	if err != nil {
		return err
	}
	// +1 skips the header row.
	sh.Cell(row+1, col).SetString(value)
	return nil
}

func (s *XLSXStore) WriteRow(table string, row int, cells []string) error {
	sh, err := s.sheet(table, false)
	if err != nil {
		return err
	}
	for col, value := range cells {
		sh.Cell(row+1, col).SetString(value)
	}
	// Clear trailing cells the caller no longer wants.
	if row+1 < len(sh.Rows) {
		for col := len(cells); col < len(sh.Rows[row+1].Cells); col++ {
			sh.Cell(row+1, col).SetString("")
		}
	}
	return nil
}

func (s *XLSXStore) AppendRows(table string, rows [][]string) error {
	sh, err := s.sheet(table, false)
	if err != nil {
		return err
	}
	for _, cells := range rows {
		row := sh.AddRow()
		for _, value := range cells {
			row.AddCell().SetString(value)
		}
	}
	return nil
}

func (s *XLSXStore) Clear(table string) error {
	sh, err := s.sheet(table, true)
	if err != nil {
		return err
	}
	sh.Rows = nil
	sh.MaxRow = 0
	return nil
}

func (s *XLSXStore) Flush() error {
	if err := s.file.Save(s.path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", s.path)
	}
	return nil
}

func (s *XLSXStore) Close() error {
	return s.Flush()
}
