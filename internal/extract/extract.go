package extract

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/blackwell-systems/shotprofile/internal/logging"
	"github.com/blackwell-systems/shotprofile/internal/store"
)

// WriteOption configures WriteExtract.
type WriteOption func(*writeOptions)

type writeOptions struct {
	parquetDir string
	onTable    func(def TableDefinition, rows int)
}

// WithParquetDir also writes each table as Parquet into dir.
func WithParquetDir(dir string) WriteOption {
	return func(o *writeOptions) { o.parquetDir = dir }
}

// WithTableCallback is called after each table is written.
func WithTableCallback(fn func(def TableDefinition, rows int)) WriteOption {
	return func(o *writeOptions) { o.onTable = fn }
}

// WriteExtract writes the team, player and shot tables to path in a single
// session. On any error the session is discarded and ErrExport returned.
func WriteExtract(ctx context.Context, path string, mode Mode, tables Tables, opts ...WriteOption) (err error) {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}

	s, err := Open(ctx, path, mode)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			s.Discard()
		}
	}()

	for _, t := range []struct {
		def  TableDefinition
		rows []store.SummaryRow
	}{
		{TeamTable, tables.Team},
		{PlayerTable, tables.Player},
		{ShotTable, tables.Shot},
	} {
		if err := s.WriteTable(ctx, t.def, t.rows); err != nil {
			return err
		}
		if o.onTable != nil {
			o.onTable(t.def, len(t.rows))
		}
	}

	if o.parquetDir != "" {
		if err := s.ExportParquet(ctx, o.parquetDir); err != nil {
			return err
		}
	}

	if err := s.Close(); err != nil {
		return err
	}

	logging.Ctx(ctx, "extract").Info().
		Str("path", path).
		Str("mode", mode.String()).
		Int("team_rows", len(tables.Team)).
		Int("player_rows", len(tables.Player)).
		Int("shot_rows", len(tables.Shot)).
		Msg("Extract written")
	return nil
}

func openReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrExport, path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrExport, path, err)
	}
	return db, nil
}

// ReadTable reads a table back as summary rows, in storage order.
func ReadTable(ctx context.Context, path string, def TableDefinition) ([]store.SummaryRow, error) {
	db, err := openReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(def.columnNames(), ", "), def.Name)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrExport, def.Name, err)
	}
	defer rows.Close()

	var result []store.SummaryRow
	for rows.Next() {
		keys := make([]string, def.keyCount())
		dest := make([]any, 0, len(def.Columns))
		for i := range keys {
			dest = append(dest, &keys[i])
		}
		var r store.SummaryRow
		dest = append(dest, &r.Attempts, &r.Made, &r.Missed, &r.Accuracy)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: failed to scan %s row: %v", ErrExport, def.Name, err)
		}
		r.Keys = keys
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating %s rows: %v", ErrExport, def.Name, err)
	}
	return result, nil
}

// Inspect returns the row count of each extract table present in path.
func Inspect(ctx context.Context, path string) (map[string]int64, error) {
	db, err := openReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	counts := make(map[string]int64)
	for _, def := range []TableDefinition{TeamTable, PlayerTable, ShotTable} {
		var exists int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'main' AND table_name = ?",
			def.Name,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to inspect %s: %v", ErrExport, path, err)
		}
		if exists == 0 {
			continue
		}

		var n int64
		if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", def.Name)).Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: failed to count %s: %v", ErrExport, def.Name, err)
		}
		counts[def.Name] = n
	}
	return counts, nil
}
