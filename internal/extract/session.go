// Package extract writes summary tables into a DuckDB analytics file that BI
// tools read directly.
//
// One Session covers one write: open, write the team, player and shot
// tables, close. In create mode the file is assembled beside the target and
// renamed over it on Close, so readers never see a half-written extract.
package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/blackwell-systems/shotprofile/internal/logging"
	"github.com/blackwell-systems/shotprofile/internal/store"
)

// ErrExport is returned when the extract cannot be written: the destination
// is unwritable or a table exists with an incompatible definition. A failed
// write must be regenerated from scratch.
var ErrExport = errors.New("extract write failed")

// Mode selects how an existing extract file is treated.
type Mode int

const (
	// ModeCreate replaces the extract file.
	ModeCreate Mode = iota
	// ModeUpdate appends to the extract file, creating it if needed.
	ModeUpdate
)

// ParseMode parses "create" or "update".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "create":
		return ModeCreate, nil
	case "update":
		return ModeUpdate, nil
	default:
		return ModeCreate, fmt.Errorf("unknown extract mode %q (want create or update)", s)
	}
}

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Session is an open extract file.
type Session struct {
	db       *sql.DB
	path     string
	workPath string
	mode     Mode
	written  []string
	done     bool
}

// Open starts a write session on path.
func Open(ctx context.Context, path string, mode Mode) (*Session, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: destination directory %s: %v", ErrExport, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrExport, dir)
	}

	workPath := path
	if mode == ModeCreate {
		workPath = path + ".tmp"
		removeDatabaseFiles(workPath)
	}

	db, err := sql.Open("duckdb", workPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrExport, workPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if mode == ModeCreate {
			removeDatabaseFiles(workPath)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrExport, workPath, err)
	}

	logging.Ctx(ctx, "extract").Debug().
		Str("path", path).
		Str("mode", mode.String()).
		Msg("Extract session opened")

	return &Session{db: db, path: path, workPath: workPath, mode: mode}, nil
}

// Path returns the final extract path.
func (s *Session) Path() string {
	return s.path
}

// WriteTable creates the table if needed and inserts rows in slice order.
// An existing table whose columns differ from def is a schema conflict.
func (s *Session) WriteTable(ctx context.Context, def TableDefinition, rows []store.SummaryRow) error {
	if s.done {
		return fmt.Errorf("%w: session already closed", ErrExport)
	}

	existing, err := s.tableColumns(ctx, def.Name)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		if _, err := s.db.ExecContext(ctx, def.createStatement()); err != nil {
			return fmt.Errorf("%w: failed to create table %s: %v", ErrExport, def.Name, err)
		}
	} else if !sameColumns(existing, def.Columns) {
		return fmt.Errorf("%w: table %s exists with columns (%s), want (%s)",
			ErrExport, def.Name, describeColumns(existing), describeColumns(def.Columns))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrExport, err)
	}

	stmt, err := tx.PrepareContext(ctx, def.insertStatement())
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("%w: failed to prepare insert into %s: %v", ErrExport, def.Name, err)
	}
	defer stmt.Close()

	for i, r := range rows {
		vals, err := def.values(r)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("%w: row %d: %v", ErrExport, i, err)
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("%w: failed to insert row %d into %s: %v", ErrExport, i, def.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit %s: %v", ErrExport, def.Name, err)
	}

	s.written = append(s.written, def.Name)
	logging.Ctx(ctx, "extract").Debug().Str("table", def.Name).Int("rows", len(rows)).Msg("Table written")
	return nil
}

// ExportParquet copies every table written in this session to
// dir/<table>.parquet.
func (s *Session) ExportParquet(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create parquet directory: %v", ErrExport, err)
	}

	for _, table := range s.written {
		out := filepath.Join(dir, table+".parquet")
		query := fmt.Sprintf(`COPY %s TO %s (FORMAT PARQUET, COMPRESSION 'ZSTD')`, table, quoteLiteral(out))
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("%w: failed to export %s to parquet: %v", ErrExport, table, err)
		}
	}
	return nil
}

// Close checkpoints and closes the file; in create mode it then moves the
// finished extract over the target path.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	s.done = true

	if _, err := s.db.Exec("CHECKPOINT"); err != nil {
		s.db.Close()
		s.removeWork()
		return fmt.Errorf("%w: failed to checkpoint %s: %v", ErrExport, s.workPath, err)
	}
	if err := s.db.Close(); err != nil {
		s.removeWork()
		return fmt.Errorf("%w: failed to close %s: %v", ErrExport, s.workPath, err)
	}

	if s.mode == ModeCreate {
		os.Remove(s.path + ".wal")
		if err := os.Rename(s.workPath, s.path); err != nil {
			s.removeWork()
			return fmt.Errorf("%w: failed to move extract into place: %v", ErrExport, err)
		}
	}
	return nil
}

// removeWork deletes the partial file of a create session.
func (s *Session) removeWork() {
	if s.mode == ModeCreate {
		removeDatabaseFiles(s.workPath)
	}
}

// Discard abandons the session. In create mode the partial file is removed
// and the previous extract, if any, is left untouched; in update mode the
// file may hold a partial write and must be regenerated.
func (s *Session) Discard() {
	if s.done {
		return
	}
	s.done = true
	s.db.Close()
	s.removeWork()
}

func (s *Session) tableColumns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to inspect table %s: %v", ErrExport, table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var typ string
		if err := rows.Scan(&c.Name, &typ); err != nil {
			return nil, fmt.Errorf("%w: failed to scan column info: %v", ErrExport, err)
		}
		c.Type = ColumnType(strings.ToUpper(typ))
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating column info: %v", ErrExport, err)
	}
	return cols, nil
}

func sameColumns(a, b []Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i].Name, b[i].Name) || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}

func describeColumns(cols []Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return strings.Join(parts, ", ")
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// removeDatabaseFiles deletes a DuckDB file and its write-ahead log.
func removeDatabaseFiles(path string) {
	os.Remove(path)
	os.Remove(path + ".wal")
}
