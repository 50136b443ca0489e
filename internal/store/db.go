package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/blackwell-systems/shotprofile/internal/logging"
)

// Store provides read access to a SQLite shot log.
type Store struct {
	db   *sql.DB
	path string
}

// New creates a new Store with the specified database path.
// Use ":memory:" for in-memory databases (useful for testing).
// The file is created if it does not exist; use Open for an existing shot log.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrDataAccess, err)
	}

	// Set connection pool defaults
	db.SetMaxOpenConns(1) // SQLite only allows one writer at a time
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", ErrDataAccess, dbPath, err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Open opens an existing shot log and verifies that the nba_shots table
// carries every column the aggregates read. It fails fast: a missing file,
// missing table or missing column returns ErrDataAccess.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("%w: shot log %s: %v", ErrDataAccess, dbPath, err)
		}
	}

	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := s.Validate(ctx); err != nil {
		s.Close()
		return nil, err
	}

	logging.WithComponent("store").Debug().Str("path", dbPath).Msg("Shot log opened")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// CreateSchema creates the nba_shots table and its indexes.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Validate checks that the shots table exists and has every required column.
func (s *Store) Validate(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", ShotsTable)
	if err != nil {
		return fmt.Errorf("%w: failed to inspect %s: %v", ErrDataAccess, ShotsTable, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: failed to scan column info: %v", ErrDataAccess, err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: error iterating column info: %v", ErrDataAccess, err)
	}

	if len(present) == 0 {
		return fmt.Errorf("%w: table %s not found", ErrDataAccess, ShotsTable)
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Table: ShotsTable, Columns: missing}
	}

	return nil
}
