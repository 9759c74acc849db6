package index

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
)

// Table is the name of the index table.
const Table = "file_hashes"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS file_hashes (
		filehash TEXT PRIMARY KEY,
		filename TEXT,
		filetype TEXT,
		filesize TEXT
	);`,
}

var expectedColumns = []string{"filehash", "filename", "filetype", "filesize"}

type columnInfo struct {
	CID        int            `db:"cid"`
	Name       string         `db:"name"`
	Type       string         `db:"type"`
	NotNull    int            `db:"notnull"`
	Default    sql.NullString `db:"dflt_value"`
	PrimaryKey int            `db:"pk"`
}

// IsEmpty reports whether the index holds no rows. A missing table counts
// as empty.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	exists, err := tableExists(ctx, s.db)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}

	var found int
	err = s.db.GetContext(ctx, &found, `SELECT EXISTS (SELECT 1 FROM file_hashes LIMIT 1)`)
	if err != nil {
		return false, fmt.Errorf("probe index rows: %w", err)
	}
	return found == 0, nil
}

// InitializeSchema creates the table if it is absent. It is idempotent.
// An existing table with different columns yields ErrSchema.
func (s *Store) InitializeSchema(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return verifyColumns(ctx, s.db)
}

func tableExists(ctx context.Context, db *sqlx.DB) (bool, error) {
	var n int
	err := db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, Table)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	return n > 0, nil
}

func verifyColumns(ctx context.Context, db *sqlx.DB) error {
	var cols []columnInfo
	if err := db.SelectContext(ctx, &cols, `PRAGMA table_info(file_hashes)`); err != nil {
		return fmt.Errorf("inspect columns: %w", err)
	}

	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	slices.Sort(names)

	want := slices.Clone(expectedColumns)
	slices.Sort(want)

	if !slices.Equal(names, want) {
		return fmt.Errorf("%w: have columns %v, want %v", ErrSchema, names, want)
	}
	return nil
}
