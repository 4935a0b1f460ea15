package sheet

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over a local SQLite database, for operators
// who prefer a database file to an xlsx workbook. Each sheet row is stored
// as a JSON-encoded cell array keyed by (sheet, pos); pos 0 is the header.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
	sheet TEXT NOT NULL,
	pos   INTEGER NOT NULL,
	cells TEXT NOT NULL,
	PRIMARY KEY (sheet, pos)
);
`

// OpenSQLite opens (or creates) the database at dsn and ensures the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) readPos(sheet string, pos int) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT cells FROM sheet_rows WHERE sheet = ? AND pos = ?`, sheet, pos,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: read %s row %d", sheet, pos)
	}
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: decode %s row %d", sheet, pos)
	}
	return cells, true, nil
}

func (s *SQLiteStore) writePos(sheet string, pos int, cells []string) error {
	raw, err := json.Marshal(cells)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode row")
	}
	_, err = s.db.Exec(
		`INSERT INTO sheet_rows (sheet, pos, cells) VALUES (?, ?, ?)
		 ON CONFLICT (sheet, pos) DO UPDATE SET cells = excluded.cells`,
		sheet, pos, string(raw),
	)
	return eris.Wrapf(err, "sqlite: write %s row %d", sheet, pos)
}

func (s *SQLiteStore) maxPos(sheet string) (int, error) {
	var pos sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(pos) FROM sheet_rows WHERE sheet = ?`, sheet,
	).Scan(&pos)
	if err != nil {
		return -1, eris.Wrapf(err, "sqlite: max pos %s", sheet)
	}
	if !pos.Valid {
		return -1, nil
	}
	return int(pos.Int64), nil
}

func (s *SQLiteStore) EnsureHeader(table string, want []string) error {
	header, ok, err := s.readPos(table, 0)
	if err != nil {
		return err
	}
	if !ok {
		return s.writePos(table, 0, want)
	}
	for i, col := range want {
		var got string
		if i < len(header) {
			got = header[i]
		}
		if !strings.EqualFold(strings.TrimSpace(got), col) {
			return &SchemaMismatchError{Table: table, Col: i, Want: col, Got: got}
		}
	}
	return nil
}

func (s *SQLiteStore) ReadRows(table string, colCount int) ([][]string, error) {
	rows, err := s.db.Query(
		`SELECT cells FROM sheet_rows WHERE sheet = ? AND pos > 0 ORDER BY pos`, table,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: read rows %s", table)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan row %s", table)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode row %s", table)
		}
		fixed := make([]string, colCount)
		copy(fixed, cells)
		out = append(out, fixed)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: iterate rows %s", table)
}

func (s *SQLiteStore) WriteCell(table string, row, col int, value string) error {
	cells, ok, err := s.readPos(table, row+1)
	if err != nil {
		return err
	}
	if !ok {
		cells = nil
	}
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	return s.writePos(table, row+1, cells)
}

func (s *SQLiteStore) WriteRow(table string, row int, cells []string) error {
	return s.writePos(table, row+1, cells)
}

func (s *SQLiteStore) AppendRows(table string, rows [][]string) error {
	next, err := s.maxPos(table)
	if err != nil {
		return err
	}
	next++
	if next == 0 {
		// Appending to a sheet with no header leaves pos 0 free for one.
		next = 1
	}
	for _, cells := range rows {
		if err := s.writePos(table, next, cells); err != nil {
			return err
		}
		next++
	}
	return nil
}

func (s *SQLiteStore) Clear(table string) error {
	_, err := s.db.Exec(`DELETE FROM sheet_rows WHERE sheet = ?`, table)
	return eris.Wrapf(err, "sqlite: clear %s", table)
}

func (s *SQLiteStore) Flush() error {
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
