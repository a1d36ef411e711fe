package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (fields, metrics)
const currentSchemaVersion = 1

// Store persists catalogs in SQLite.
// Uses WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens a SQLite catalog database at the given
// path. Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the catalog's fields and metrics, replacing whatever the
// database held before. The write is transactional.
func (s *Store) Save(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fields"); err != nil {
		return fmt.Errorf("clear fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM metrics"); err != nil {
		return fmt.Errorf("clear metrics: %w", err)
	}

	for _, f := range c.Fields() {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO fields (id, entity_id, table_name, name, base_type) VALUES (?, ?, ?, ?, ?)",
			f.ID, f.EntityID, f.Table, f.Name, f.BaseType)
		if err != nil {
			return fmt.Errorf("save field %s.%s: %w", f.Table, f.Name, err)
		}
	}
	for _, m := range c.Metrics() {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO metrics (id, entity_id, table_name, name, definition) VALUES (?, ?, ?, ?, ?)",
			m.ID, m.EntityID, m.Table, m.Name, m.Definition)
		if err != nil {
			return fmt.Errorf("save metric %q: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads the full catalog back, in id order.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	c := New()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, entity_id, table_name, name, base_type FROM fields ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		f := &Field{}
		if err := rows.Scan(&f.ID, &f.EntityID, &f.Table, &f.Name, &f.BaseType); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		c.restoreField(f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}

	mrows, err := s.db.QueryContext(ctx,
		"SELECT id, entity_id, table_name, name, definition FROM metrics ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		m := &Metric{}
		if err := mrows.Scan(&m.ID, &m.EntityID, &m.Table, &m.Name, &m.Definition); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		c.restoreMetric(m)
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	return c, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the
// schema version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}
